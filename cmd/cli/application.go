package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitimport/internal/execshell"
	"github.com/temirov/gitimport/internal/githubapi"
	"github.com/temirov/gitimport/internal/gitmirror"
	"github.com/temirov/gitimport/internal/importer"
	"github.com/temirov/gitimport/internal/utils"
)

const (
	applicationNameConstant                 = "gitimport"
	applicationShortDescriptionConstant     = "Mirror git repositories into a GitHub account"
	applicationLongDescriptionConstant      = "gitimport mirrors every reference of a source git repository into a destination GitHub repository, creating the destination when needed."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	logLevelConfigKeyConstant               = "log_level"
	logFormatConfigKeyConstant              = "log_format"
	accessTokenConfigKeyConstant            = "token"
	ownerConfigKeyConstant                  = "owner"
	sourceConfigKeyConstant                 = "source"
	branchConfigKeyConstant                 = "branch"
	nameConfigKeyConstant                   = "name"
	environmentPrefixConstant               = "GITIMPORT"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	importCommandBuildErrorTemplateConstant = "unable to build import command: %w"
	hostingClientErrorTemplateConstant      = "unable to construct hosting client: %w"
	shellExecutorErrorTemplateConstant      = "unable to construct shell executor: %w"
	mirrorManagerErrorTemplateConstant      = "unable to construct mirror manager: %w"
	importServiceErrorTemplateConstant      = "unable to construct import service: %w"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Token     string `mapstructure:"token"`
	Owner     string `mapstructure:"owner"`
	Source    string `mapstructure:"source"`
	Branch    string `mapstructure:"branch"`
	Name      string `mapstructure:"name"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	importBuilder := importer.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		DefaultsProvider: application.importDefaults,
		ServiceProvider:  application.buildImportService,
	}
	importCommand, importBuildError := importBuilder.Build()
	if importBuildError != nil {
		return nil, fmt.Errorf(importCommandBuildErrorTemplateConstant, importBuildError)
	}
	cobraCommand.AddCommand(importCommand)

	application.rootCommand = cobraCommand

	return application, nil
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
// An interrupt cancels the command context so running git subprocesses terminate.
func (application *Application) Execute() error {
	signalContext, stopSignalHandling := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignalHandling()
	application.rootCommand.SetContext(signalContext)

	executionError := application.rootCommand.Execute()
	syncError := application.flushLogger()
	if executionError != nil {
		return executionError
	}
	if syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return nil
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	application, creationError := NewApplication()
	if creationError != nil {
		return creationError
	}
	return application.Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		logLevelConfigKeyConstant:    string(utils.LogLevelInfo),
		logFormatConfigKeyConstant:   string(utils.LogFormatStructured),
		accessTokenConfigKeyConstant: "",
		ownerConfigKeyConstant:       "",
		sourceConfigKeyConstant:      "",
		branchConfigKeyConstant:      "",
		nameConfigKeyConstant:        "",
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if command.Root().PersistentFlags().Changed(logLevelFlagNameConstant) {
		application.configuration.LogLevel = application.logLevelFlagValue
	}
	if command.Root().PersistentFlags().Changed(logFormatFlagNameConstant) {
		application.configuration.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.LogLevel),
		utils.LogFormat(application.configuration.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) importDefaults() importer.ImportDefaults {
	return importer.ImportDefaults{
		AccessToken:    application.configuration.Token,
		OwnerAccount:   application.configuration.Owner,
		SourceURL:      application.configuration.Source,
		DefaultBranch:  application.configuration.Branch,
		RepositoryName: application.configuration.Name,
	}
}

func (application *Application) buildImportService(logger *zap.Logger, accessToken string) (importer.ServiceExecutor, error) {
	hostingClient, clientError := githubapi.NewClient(logger, githubapi.ClientConfiguration{AccessToken: accessToken})
	if clientError != nil {
		return nil, fmt.Errorf(hostingClientErrorTemplateConstant, clientError)
	}

	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, fmt.Errorf(shellExecutorErrorTemplateConstant, executorError)
	}

	mirrorManager, managerError := gitmirror.NewManager(logger, shellExecutor, nil)
	if managerError != nil {
		return nil, fmt.Errorf(mirrorManagerErrorTemplateConstant, managerError)
	}

	importService, serviceError := importer.NewService(importer.ServiceDependencies{
		Logger:            logger,
		HostingClient:     hostingClient,
		MirrorManager:     mirrorManager,
		Prompter:          importer.NewIOConfirmationPrompter(os.Stdin, os.Stdout),
		ProcessIdentifier: os.Getpid(),
	})
	if serviceError != nil {
		return nil, fmt.Errorf(importServiceErrorTemplateConstant, serviceError)
	}

	return importService, nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}
