package gitmirror_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitimport/internal/execshell"
	"github.com/temirov/gitimport/internal/gitmirror"
)

const (
	testCloneSourceURLConstant      = "https://example.com/group/project.git"
	testCloneStagingPathConstant    = "/tmp/git-import-project-7"
	testPushDestinationURLConstant  = "https://push-token@github.com/octocat/project.git"
	testCloneFailureMessageConstant = "clone failed"
	terminalPromptEnvironmentKey    = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValue     = "0"
)

type recordingGitExecutor struct {
	recordedDetails []execshell.CommandDetails
	executionError  error
}

func (executor *recordingGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return execshell.ExecutionResult{}, executor.executionError
}

type recordingStagingFileSystem struct {
	removedPaths []string
	removalError error
}

func (fileSystem *recordingStagingFileSystem) RemoveAll(path string) error {
	fileSystem.removedPaths = append(fileSystem.removedPaths, path)
	return fileSystem.removalError
}

func TestNewManagerValidation(testInstance *testing.T) {
	testCases := []struct {
		name        string
		logger      *zap.Logger
		gitExecutor gitmirror.GitExecutor
		expectError error
	}{
		{
			name:        "missing_logger",
			gitExecutor: &recordingGitExecutor{},
			expectError: gitmirror.ErrLoggerNotConfigured,
		},
		{
			name:        "missing_git_executor",
			logger:      zap.NewNop(),
			expectError: gitmirror.ErrGitExecutorNotConfigured,
		},
		{
			name:        "successful_construction",
			logger:      zap.NewNop(),
			gitExecutor: &recordingGitExecutor{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager, creationError := gitmirror.NewManager(testCase.logger, testCase.gitExecutor, nil)
			if testCase.expectError != nil {
				require.ErrorIs(testInstance, creationError, testCase.expectError)
				require.Nil(testInstance, manager)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, manager)
		})
	}
}

func TestCloneMirrorRemovesStagingBeforeCloning(testInstance *testing.T) {
	gitExecutor := &recordingGitExecutor{}
	fileSystem := &recordingStagingFileSystem{}
	manager, creationError := gitmirror.NewManager(zap.NewNop(), gitExecutor, fileSystem)
	require.NoError(testInstance, creationError)

	cloneError := manager.CloneMirror(context.Background(), testCloneSourceURLConstant, testCloneStagingPathConstant)
	require.NoError(testInstance, cloneError)

	require.Equal(testInstance, []string{testCloneStagingPathConstant}, fileSystem.removedPaths)
	require.Len(testInstance, gitExecutor.recordedDetails, 1)
	require.Equal(
		testInstance,
		[]string{"clone", "--mirror", testCloneSourceURLConstant, testCloneStagingPathConstant},
		gitExecutor.recordedDetails[0].Arguments,
	)
	require.Empty(testInstance, gitExecutor.recordedDetails[0].WorkingDirectory)
	require.Equal(testInstance, terminalPromptDisabledValue, gitExecutor.recordedDetails[0].EnvironmentVariables[terminalPromptEnvironmentKey])
}

func TestCloneMirrorPropagatesExecutionFailure(testInstance *testing.T) {
	gitExecutor := &recordingGitExecutor{executionError: errors.New(testCloneFailureMessageConstant)}
	manager, creationError := gitmirror.NewManager(zap.NewNop(), gitExecutor, &recordingStagingFileSystem{})
	require.NoError(testInstance, creationError)

	cloneError := manager.CloneMirror(context.Background(), testCloneSourceURLConstant, testCloneStagingPathConstant)
	require.Error(testInstance, cloneError)
	require.Contains(testInstance, cloneError.Error(), testCloneFailureMessageConstant)
}

func TestPushMirrorRunsFromStagingDirectory(testInstance *testing.T) {
	gitExecutor := &recordingGitExecutor{}
	manager, creationError := gitmirror.NewManager(zap.NewNop(), gitExecutor, &recordingStagingFileSystem{})
	require.NoError(testInstance, creationError)

	pushError := manager.PushMirror(context.Background(), testCloneStagingPathConstant, testPushDestinationURLConstant)
	require.NoError(testInstance, pushError)

	require.Len(testInstance, gitExecutor.recordedDetails, 1)
	require.Equal(
		testInstance,
		[]string{"push", "--mirror", testPushDestinationURLConstant},
		gitExecutor.recordedDetails[0].Arguments,
	)
	require.Equal(testInstance, testCloneStagingPathConstant, gitExecutor.recordedDetails[0].WorkingDirectory)
	require.Equal(testInstance, terminalPromptDisabledValue, gitExecutor.recordedDetails[0].EnvironmentVariables[terminalPromptEnvironmentKey])
}

func TestRemoveStagingToleratesRemovalFailure(testInstance *testing.T) {
	fileSystem := &recordingStagingFileSystem{removalError: errors.New("busy")}
	manager, creationError := gitmirror.NewManager(zap.NewNop(), &recordingGitExecutor{}, fileSystem)
	require.NoError(testInstance, creationError)

	manager.RemoveStaging(testCloneStagingPathConstant)
	require.Equal(testInstance, []string{testCloneStagingPathConstant}, fileSystem.removedPaths)
}
