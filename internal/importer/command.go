package importer

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	commandUseConstant               = "import"
	commandShortDescriptionConstant  = "Mirror a source git repository into a GitHub account"
	commandLongDescriptionConstant   = "import clones every reference of the source repository and pushes the full mirror into the destination GitHub account, creating the destination repository when it does not exist yet."
	accessTokenFlagNameConstant      = "token"
	accessTokenFlagShorthandConstant = "t"
	accessTokenFlagUsageConstant     = "GitHub personal access token"
	ownerFlagNameConstant            = "owner"
	ownerFlagShorthandConstant       = "u"
	ownerFlagUsageConstant           = "Destination GitHub user or organization"
	sourceFlagNameConstant           = "source"
	sourceFlagShorthandConstant      = "s"
	sourceFlagUsageConstant          = "Source repository URL to mirror"
	branchFlagNameConstant           = "branch"
	branchFlagShorthandConstant      = "b"
	branchFlagUsageConstant          = "Default branch to set after the push"
	nameFlagNameConstant             = "name"
	nameFlagShorthandConstant        = "n"
	nameFlagUsageConstant            = "Destination repository name (defaults to the source repository name)"
	interactiveFlagNameConstant      = "interactive"
	interactiveFlagShorthandConstant = "i"
	interactiveFlagUsageConstant     = "Prompt for every value, including optional ones"
	accessTokenPromptLabelConstant   = "GitHub personal access token"
	ownerPromptLabelConstant         = "Destination user or organization"
	sourcePromptLabelConstant        = "Source repository URL"
	branchPromptLabelConstant        = "Default branch (optional)"
	namePromptLabelConstant          = "Destination repository name (optional)"
	importCancelledMessageConstant   = "Import cancelled by user"
)

// ServiceExecutor executes a prepared import run.
type ServiceExecutor interface {
	Execute(executionContext context.Context, options ImportOptions) error
}

// ImportDefaults carries option values resolved from configuration sources.
type ImportDefaults struct {
	AccessToken    string
	OwnerAccount   string
	SourceURL      string
	DefaultBranch  string
	RepositoryName string
}

// CommandBuilder assembles the import Cobra command.
type CommandBuilder struct {
	LoggerProvider   func() *zap.Logger
	DefaultsProvider func() ImportDefaults
	ServiceProvider  func(logger *zap.Logger, accessToken string) (ServiceExecutor, error)
	InputReader      io.Reader
	OutputWriter     io.Writer
}

// Build constructs the import command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runImport,
	}

	command.Flags().StringP(accessTokenFlagNameConstant, accessTokenFlagShorthandConstant, "", accessTokenFlagUsageConstant)
	command.Flags().StringP(ownerFlagNameConstant, ownerFlagShorthandConstant, "", ownerFlagUsageConstant)
	command.Flags().StringP(sourceFlagNameConstant, sourceFlagShorthandConstant, "", sourceFlagUsageConstant)
	command.Flags().StringP(branchFlagNameConstant, branchFlagShorthandConstant, "", branchFlagUsageConstant)
	command.Flags().StringP(nameFlagNameConstant, nameFlagShorthandConstant, "", nameFlagUsageConstant)
	command.Flags().BoolP(interactiveFlagNameConstant, interactiveFlagShorthandConstant, false, interactiveFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runImport(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.resolveOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()

	service, serviceError := builder.ServiceProvider(logger, options.AccessToken)
	if serviceError != nil {
		return serviceError
	}

	executionError := service.Execute(command.Context(), options)
	if errors.Is(executionError, ErrImportDeclined) {
		logger.Info(importCancelledMessageConstant)
		return nil
	}
	return executionError
}

func (builder *CommandBuilder) resolveOptions(command *cobra.Command) (ImportOptions, error) {
	defaults := ImportDefaults{}
	if builder.DefaultsProvider != nil {
		defaults = builder.DefaultsProvider()
	}

	options := ImportOptions{
		AccessToken:    flagOrDefault(command, accessTokenFlagNameConstant, defaults.AccessToken),
		OwnerAccount:   flagOrDefault(command, ownerFlagNameConstant, defaults.OwnerAccount),
		SourceURL:      flagOrDefault(command, sourceFlagNameConstant, defaults.SourceURL),
		DefaultBranch:  flagOrDefault(command, branchFlagNameConstant, defaults.DefaultBranch),
		RepositoryName: flagOrDefault(command, nameFlagNameConstant, defaults.RepositoryName),
	}

	interactiveRequested, _ := command.Flags().GetBool(interactiveFlagNameConstant)
	return builder.promptForMissingValues(options, interactiveRequested)
}

// promptForMissingValues fills options from the input prompter. Interactive
// mode prompts for every value; a missing required value starts a prompting
// session covering every still-empty value, optional ones included. An empty
// response keeps the current value.
func (builder *CommandBuilder) promptForMissingValues(options ImportOptions, interactiveRequested bool) (ImportOptions, error) {
	prompter := NewLineInputPrompter(builder.resolveInputReader(), builder.resolveOutputWriter())

	valueTargets := []struct {
		label    string
		target   *string
		required bool
	}{
		{label: accessTokenPromptLabelConstant, target: &options.AccessToken, required: true},
		{label: ownerPromptLabelConstant, target: &options.OwnerAccount, required: true},
		{label: sourcePromptLabelConstant, target: &options.SourceURL, required: true},
		{label: branchPromptLabelConstant, target: &options.DefaultBranch, required: false},
		{label: namePromptLabelConstant, target: &options.RepositoryName, required: false},
	}

	anyRequiredMissing := false
	for _, valueTarget := range valueTargets {
		if valueTarget.required && len(strings.TrimSpace(*valueTarget.target)) == 0 {
			anyRequiredMissing = true
		}
	}

	for _, valueTarget := range valueTargets {
		missingValue := len(strings.TrimSpace(*valueTarget.target)) == 0
		if !interactiveRequested && !(missingValue && anyRequiredMissing) {
			continue
		}
		promptedValue, promptError := prompter.PromptForValue(valueTarget.label)
		if promptError != nil {
			return ImportOptions{}, promptError
		}
		if len(promptedValue) > 0 {
			*valueTarget.target = promptedValue
		}
	}

	return options, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) resolveInputReader() io.Reader {
	if builder.InputReader != nil {
		return builder.InputReader
	}
	return os.Stdin
}

func (builder *CommandBuilder) resolveOutputWriter() io.Writer {
	if builder.OutputWriter != nil {
		return builder.OutputWriter
	}
	return os.Stdout
}

func flagOrDefault(command *cobra.Command, flagName string, defaultValue string) string {
	flagValue, _ := command.Flags().GetString(flagName)
	if len(strings.TrimSpace(flagValue)) > 0 {
		return flagValue
	}
	return defaultValue
}
