package importer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/gitimport/internal/gitmirror"
)

const (
	serviceLoggerNotConfiguredMessageConstant        = "logger not configured"
	serviceHostingClientNotConfiguredMessageConstant = "hosting client not configured"
	serviceMirrorManagerNotConfiguredMessageConstant = "mirror manager not configured"
	importDeclinedMessageConstant                    = "import declined"
	confirmationUnavailableMessageConstant           = "destination exists and no confirmation prompter is configured"
	overwritePromptTemplateConstant                  = "Repository %s/%s already exists. Overwrite all of its references?"
	importStartedMessageConstant                     = "Starting repository import"
	destinationExistsMessageConstant                 = "Destination repository already exists"
	repositoryCreatedMessageConstant                 = "Created destination repository"
	importCompletedMessageConstant                   = "Repository import completed"
	defaultBranchUpdatedMessageConstant              = "Updated default branch"
	sourceURLLogFieldConstant                        = "source"
	destinationLogFieldConstant                      = "destination"
	defaultBranchLogFieldConstant                    = "default_branch"
	ownerTypeLogFieldConstant                        = "owner_type"
	repositoryIdentifierLogFieldConstant             = "repository_id"
	destinationWebURLLogFieldConstant                = "url"
	destinationLabelTemplateConstant                 = "%s/%s"
)

// Sentinel errors surfaced by the import pipeline.
var (
	ErrLoggerNotConfigured        = errors.New(serviceLoggerNotConfiguredMessageConstant)
	ErrHostingClientNotConfigured = errors.New(serviceHostingClientNotConfiguredMessageConstant)
	ErrMirrorManagerNotConfigured = errors.New(serviceMirrorManagerNotConfiguredMessageConstant)
	ErrImportDeclined             = errors.New(importDeclinedMessageConstant)
	ErrConfirmationUnavailable    = errors.New(confirmationUnavailableMessageConstant)
)

// ServiceDependencies enumerates the collaborators required by the Service.
type ServiceDependencies struct {
	Logger             *zap.Logger
	HostingClient      HostingClient
	MirrorManager      MirrorManager
	Prompter           ConfirmationPrompter
	ExecutableResolver ExecutableResolver
	ProcessIdentifier  int
}

// Service runs the sequential import pipeline.
type Service struct {
	logger             *zap.Logger
	hostingClient      HostingClient
	mirrorManager      MirrorManager
	prompter           ConfirmationPrompter
	executableResolver ExecutableResolver
	processIdentifier  int
}

// NewService validates the dependencies and constructs a Service.
// The prompter is optional; without one an existing destination aborts the import.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.HostingClient == nil {
		return nil, ErrHostingClientNotConfigured
	}
	if dependencies.MirrorManager == nil {
		return nil, ErrMirrorManagerNotConfigured
	}
	if dependencies.ExecutableResolver == nil {
		dependencies.ExecutableResolver = OSExecutableResolver{}
	}

	return &Service{
		logger:             dependencies.Logger,
		hostingClient:      dependencies.HostingClient,
		mirrorManager:      dependencies.MirrorManager,
		prompter:           dependencies.Prompter,
		executableResolver: dependencies.ExecutableResolver,
		processIdentifier:  dependencies.ProcessIdentifier,
	}, nil
}

// Execute runs the import pipeline for the provided options.
// The staging directory is removed on every exit path once transfer begins.
func (service *Service) Execute(executionContext context.Context, options ImportOptions) error {
	importJob, preparationError := PrepareImportJob(options, service.processIdentifier)
	if preparationError != nil {
		return preparationError
	}

	if dependenciesError := CheckDependencies(service.executableResolver); dependenciesError != nil {
		return dependenciesError
	}

	destinationLabel := fmt.Sprintf(destinationLabelTemplateConstant, importJob.Options.OwnerAccount, importJob.RepositoryName)
	service.logger.Info(
		importStartedMessageConstant,
		zap.String(sourceURLLogFieldConstant, importJob.Options.SourceURL),
		zap.String(destinationLogFieldConstant, destinationLabel),
		zap.String(defaultBranchLogFieldConstant, importJob.Options.DefaultBranch),
	)

	if validationError := service.hostingClient.ValidateToken(executionContext); validationError != nil {
		return validationError
	}

	destinationExists, probeError := service.hostingClient.RepositoryExists(executionContext, importJob.Options.OwnerAccount, importJob.RepositoryName)
	if probeError != nil {
		return probeError
	}

	if destinationExists {
		if confirmationError := service.confirmOverwrite(destinationLabel, importJob); confirmationError != nil {
			return confirmationError
		}
	} else {
		if creationError := service.createDestination(executionContext, importJob); creationError != nil {
			return creationError
		}
	}

	defer service.mirrorManager.RemoveStaging(importJob.StagingPath)

	if cloneError := service.mirrorManager.CloneMirror(executionContext, importJob.Options.SourceURL, importJob.StagingPath); cloneError != nil {
		return cloneError
	}

	pushURL := gitmirror.FormatAuthenticatedPushURL(importJob.Options.AccessToken, importJob.Options.OwnerAccount, importJob.RepositoryName)
	if pushError := service.mirrorManager.PushMirror(executionContext, importJob.StagingPath, pushURL); pushError != nil {
		return pushError
	}

	if len(importJob.Options.DefaultBranch) > 0 {
		if updateError := service.hostingClient.UpdateDefaultBranch(executionContext, importJob.Options.OwnerAccount, importJob.RepositoryName, importJob.Options.DefaultBranch); updateError != nil {
			return updateError
		}
		service.logger.Info(
			defaultBranchUpdatedMessageConstant,
			zap.String(destinationLogFieldConstant, destinationLabel),
			zap.String(defaultBranchLogFieldConstant, importJob.Options.DefaultBranch),
		)
	}

	service.logger.Info(
		importCompletedMessageConstant,
		zap.String(destinationLogFieldConstant, destinationLabel),
		zap.String(destinationWebURLLogFieldConstant, gitmirror.FormatDestinationWebURL(importJob.Options.OwnerAccount, importJob.RepositoryName)),
	)
	return nil
}

func (service *Service) confirmOverwrite(destinationLabel string, importJob ImportJob) error {
	service.logger.Info(destinationExistsMessageConstant, zap.String(destinationLogFieldConstant, destinationLabel))

	if service.prompter == nil {
		return ErrConfirmationUnavailable
	}

	confirmed, confirmationError := service.prompter.Confirm(fmt.Sprintf(overwritePromptTemplateConstant, importJob.Options.OwnerAccount, importJob.RepositoryName))
	if confirmationError != nil {
		return confirmationError
	}
	if !confirmed {
		return ErrImportDeclined
	}
	return nil
}

func (service *Service) createDestination(executionContext context.Context, importJob ImportJob) error {
	ownerType := service.hostingClient.ResolveOwnerType(executionContext, importJob.Options.OwnerAccount)

	createdRepository, creationError := service.hostingClient.CreateRepository(
		executionContext,
		importJob.Options.OwnerAccount,
		ownerType,
		importJob.RepositoryName,
		importJob.Options.SourceURL,
	)
	if creationError != nil {
		return creationError
	}

	service.logger.Info(
		repositoryCreatedMessageConstant,
		zap.String(ownerTypeLogFieldConstant, string(ownerType)),
		zap.Int64(repositoryIdentifierLogFieldConstant, createdRepository.Identifier),
		zap.String(destinationWebURLLogFieldConstant, createdRepository.WebURL),
	)
	return nil
}
