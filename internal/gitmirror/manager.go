package gitmirror

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/gitimport/internal/execshell"
)

const (
	gitCloneSubcommandConstant              = "clone"
	gitPushSubcommandConstant               = "push"
	gitMirrorFlagConstant                   = "--mirror"
	gitTerminalPromptEnvironmentKeyConstant = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledValueConstant  = "0"
	loggerNotConfiguredMessageConstant      = "logger not configured"
	gitExecutorNotConfiguredMessageConstant = "git executor not configured"
	stagingRemovedMessageConstant           = "Removed staging directory"
	stagingRemovalFailedMessageConstant     = "Failed to remove staging directory"
	stagingPathLogFieldConstant             = "staging_path"
)

// GitExecutor exposes the subset of shell execution used by the mirror manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// StagingFileSystem provides the filesystem operations required for staging directories.
type StagingFileSystem interface {
	RemoveAll(path string) error
}

// OSStagingFileSystem implements StagingFileSystem using the operating system.
type OSStagingFileSystem struct{}

// RemoveAll deletes the path and any children it contains.
func (OSStagingFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Sentinel construction errors.
var (
	ErrLoggerNotConfigured      = errors.New(loggerNotConfiguredMessageConstant)
	ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)
)

// Manager performs mirror transfers through the git executable.
type Manager struct {
	logger      *zap.Logger
	gitExecutor GitExecutor
	fileSystem  StagingFileSystem
}

// NewManager constructs a Manager from the provided collaborators.
func NewManager(logger *zap.Logger, gitExecutor GitExecutor, fileSystem StagingFileSystem) (*Manager, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if gitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if fileSystem == nil {
		fileSystem = OSStagingFileSystem{}
	}

	return &Manager{logger: logger, gitExecutor: gitExecutor, fileSystem: fileSystem}, nil
}

// CloneMirror clones every reference of the source repository into the staging path.
// Any pre-existing staging directory is removed first.
func (manager *Manager) CloneMirror(executionContext context.Context, sourceURL string, stagingPath string) error {
	if removalError := manager.fileSystem.RemoveAll(stagingPath); removalError != nil {
		return removalError
	}

	cloneDetails := execshell.CommandDetails{
		Arguments:            []string{gitCloneSubcommandConstant, gitMirrorFlagConstant, sourceURL, stagingPath},
		EnvironmentVariables: transferEnvironment(),
	}
	_, cloneError := manager.gitExecutor.ExecuteGit(executionContext, cloneDetails)
	return cloneError
}

// PushMirror pushes every reference from the staging path to the destination URL.
func (manager *Manager) PushMirror(executionContext context.Context, stagingPath string, destinationURL string) error {
	pushDetails := execshell.CommandDetails{
		Arguments:            []string{gitPushSubcommandConstant, gitMirrorFlagConstant, destinationURL},
		WorkingDirectory:     stagingPath,
		EnvironmentVariables: transferEnvironment(),
	}
	_, pushError := manager.gitExecutor.ExecuteGit(executionContext, pushDetails)
	return pushError
}

// transferEnvironment disables git terminal prompting so a transfer that
// needs missing credentials fails instead of blocking on input.
func transferEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentKeyConstant: gitTerminalPromptDisabledValueConstant}
}

// RemoveStaging deletes the staging directory, logging the outcome.
// Removal of an absent directory is not an error.
func (manager *Manager) RemoveStaging(stagingPath string) {
	if removalError := manager.fileSystem.RemoveAll(stagingPath); removalError != nil {
		manager.logger.Error(
			stagingRemovalFailedMessageConstant,
			zap.String(stagingPathLogFieldConstant, stagingPath),
			zap.Error(removalError),
		)
		return
	}
	manager.logger.Info(stagingRemovedMessageConstant, zap.String(stagingPathLogFieldConstant, stagingPath))
}
