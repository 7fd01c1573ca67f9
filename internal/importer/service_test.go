package importer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitimport/internal/githubapi"
	"github.com/temirov/gitimport/internal/importer"
)

const (
	serviceTestAccessTokenConstant  = "service-token"
	serviceTestOwnerAccountConstant = "octocat"
	serviceTestSourceURLConstant    = "https://example.com/group/project.git"
	serviceTestBranchNameConstant   = "main"
	serviceTestProcessIDConstant    = 91
	callValidateTokenConstant       = "ValidateToken"
	callRepositoryExistsConstant    = "RepositoryExists"
	callResolveOwnerTypeConstant    = "ResolveOwnerType"
	callCreateRepositoryConstant    = "CreateRepository"
	callUpdateDefaultBranchConstant = "UpdateDefaultBranch"
	callCloneMirrorConstant         = "CloneMirror"
	callPushMirrorConstant          = "PushMirror"
	callRemoveStagingConstant       = "RemoveStaging"
	expectedPushURLConstant         = "https://service-token@github.com/octocat/project.git"
)

type callRecorder struct {
	calls []string
}

func (recorder *callRecorder) record(callName string) {
	recorder.calls = append(recorder.calls, callName)
}

func (recorder *callRecorder) count(callName string) int {
	occurrences := 0
	for _, recordedCall := range recorder.calls {
		if recordedCall == callName {
			occurrences++
		}
	}
	return occurrences
}

func (recorder *callRecorder) indexOf(callName string) int {
	for callIndex, recordedCall := range recorder.calls {
		if recordedCall == callName {
			return callIndex
		}
	}
	return -1
}

type fakeHostingClient struct {
	recorder             *callRecorder
	validateTokenError   error
	repositoryExists     bool
	repositoryProbeError error
	ownerType            githubapi.OwnerType
	creationError        error
	branchUpdateError    error
}

func (client *fakeHostingClient) ValidateToken(executionContext context.Context) error {
	client.recorder.record(callValidateTokenConstant)
	return client.validateTokenError
}

func (client *fakeHostingClient) RepositoryExists(executionContext context.Context, ownerAccount string, repositoryName string) (bool, error) {
	client.recorder.record(callRepositoryExistsConstant)
	return client.repositoryExists, client.repositoryProbeError
}

func (client *fakeHostingClient) ResolveOwnerType(executionContext context.Context, ownerAccount string) githubapi.OwnerType {
	client.recorder.record(callResolveOwnerTypeConstant)
	return client.ownerType
}

func (client *fakeHostingClient) CreateRepository(executionContext context.Context, ownerAccount string, ownerType githubapi.OwnerType, repositoryName string, sourceURL string) (githubapi.CreatedRepository, error) {
	client.recorder.record(callCreateRepositoryConstant)
	if client.creationError != nil {
		return githubapi.CreatedRepository{}, client.creationError
	}
	return githubapi.CreatedRepository{Identifier: 7}, nil
}

func (client *fakeHostingClient) UpdateDefaultBranch(executionContext context.Context, ownerAccount string, repositoryName string, branchName string) error {
	client.recorder.record(callUpdateDefaultBranchConstant)
	return client.branchUpdateError
}

type fakeMirrorManager struct {
	recorder       *callRecorder
	cloneError     error
	pushError      error
	pushedURL      string
	clonedSource   string
	stagingRemoved []string
}

func (manager *fakeMirrorManager) CloneMirror(executionContext context.Context, sourceURL string, stagingPath string) error {
	manager.recorder.record(callCloneMirrorConstant)
	manager.clonedSource = sourceURL
	return manager.cloneError
}

func (manager *fakeMirrorManager) PushMirror(executionContext context.Context, stagingPath string, destinationURL string) error {
	manager.recorder.record(callPushMirrorConstant)
	manager.pushedURL = destinationURL
	return manager.pushError
}

func (manager *fakeMirrorManager) RemoveStaging(stagingPath string) {
	manager.recorder.record(callRemoveStagingConstant)
	manager.stagingRemoved = append(manager.stagingRemoved, stagingPath)
}

type staticConfirmationPrompter struct {
	confirmed bool
	promptErr error
}

func (prompter staticConfirmationPrompter) Confirm(prompt string) (bool, error) {
	return prompter.confirmed, prompter.promptErr
}

type staticExecutableResolver struct {
	resolutionError error
}

func (resolver staticExecutableResolver) LookPath(executableName string) (string, error) {
	if resolver.resolutionError != nil {
		return "", resolver.resolutionError
	}
	return "/usr/bin/" + executableName, nil
}

func buildServiceOptions() importer.ImportOptions {
	return importer.ImportOptions{
		AccessToken:  serviceTestAccessTokenConstant,
		OwnerAccount: serviceTestOwnerAccountConstant,
		SourceURL:    serviceTestSourceURLConstant,
	}
}

func buildService(testInstance *testing.T, hostingClient *fakeHostingClient, mirrorManager *fakeMirrorManager, prompter importer.ConfirmationPrompter, resolver importer.ExecutableResolver) *importer.Service {
	testInstance.Helper()
	service, creationError := importer.NewService(importer.ServiceDependencies{
		Logger:             zap.NewNop(),
		HostingClient:      hostingClient,
		MirrorManager:      mirrorManager,
		Prompter:           prompter,
		ExecutableResolver: resolver,
		ProcessIdentifier:  serviceTestProcessIDConstant,
	})
	require.NoError(testInstance, creationError)
	return service
}

func TestNewServiceValidation(testInstance *testing.T) {
	recorder := &callRecorder{}
	testCases := []struct {
		name         string
		dependencies importer.ServiceDependencies
		expectError  error
	}{
		{
			name: "missing_logger",
			dependencies: importer.ServiceDependencies{
				HostingClient: &fakeHostingClient{recorder: recorder},
				MirrorManager: &fakeMirrorManager{recorder: recorder},
			},
			expectError: importer.ErrLoggerNotConfigured,
		},
		{
			name: "missing_hosting_client",
			dependencies: importer.ServiceDependencies{
				Logger:        zap.NewNop(),
				MirrorManager: &fakeMirrorManager{recorder: recorder},
			},
			expectError: importer.ErrHostingClientNotConfigured,
		},
		{
			name: "missing_mirror_manager",
			dependencies: importer.ServiceDependencies{
				Logger:        zap.NewNop(),
				HostingClient: &fakeHostingClient{recorder: recorder},
			},
			expectError: importer.ErrMirrorManagerNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			service, creationError := importer.NewService(testCase.dependencies)
			require.ErrorIs(testInstance, creationError, testCase.expectError)
			require.Nil(testInstance, service)
		})
	}
}

func TestExecuteCreatesRepositoryBeforeCloning(testInstance *testing.T) {
	recorder := &callRecorder{}
	hostingClient := &fakeHostingClient{recorder: recorder, ownerType: githubapi.UserOwnerType}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	service := buildService(testInstance, hostingClient, mirrorManager, nil, staticExecutableResolver{})

	executionError := service.Execute(context.Background(), buildServiceOptions())
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, 1, recorder.count(callCreateRepositoryConstant))
	require.Less(testInstance, recorder.indexOf(callCreateRepositoryConstant), recorder.indexOf(callCloneMirrorConstant))
	require.Equal(testInstance, expectedPushURLConstant, mirrorManager.pushedURL)
	require.Equal(testInstance, serviceTestSourceURLConstant, mirrorManager.clonedSource)
	require.Zero(testInstance, recorder.count(callUpdateDefaultBranchConstant))
	require.Equal(testInstance, 1, recorder.count(callRemoveStagingConstant))
}

func TestExecuteUpdatesDefaultBranchExactlyOnceAfterPush(testInstance *testing.T) {
	recorder := &callRecorder{}
	hostingClient := &fakeHostingClient{recorder: recorder}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	service := buildService(testInstance, hostingClient, mirrorManager, nil, staticExecutableResolver{})

	options := buildServiceOptions()
	options.DefaultBranch = serviceTestBranchNameConstant

	executionError := service.Execute(context.Background(), options)
	require.NoError(testInstance, executionError)

	require.Equal(testInstance, 1, recorder.count(callUpdateDefaultBranchConstant))
	require.Less(testInstance, recorder.indexOf(callPushMirrorConstant), recorder.indexOf(callUpdateDefaultBranchConstant))
}

func TestExecuteDeclinedOverwriteStopsPipeline(testInstance *testing.T) {
	recorder := &callRecorder{}
	hostingClient := &fakeHostingClient{recorder: recorder, repositoryExists: true}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	service := buildService(testInstance, hostingClient, mirrorManager, staticConfirmationPrompter{confirmed: false}, staticExecutableResolver{})

	executionError := service.Execute(context.Background(), buildServiceOptions())
	require.ErrorIs(testInstance, executionError, importer.ErrImportDeclined)

	require.Zero(testInstance, recorder.count(callCreateRepositoryConstant))
	require.Zero(testInstance, recorder.count(callCloneMirrorConstant))
	require.Zero(testInstance, recorder.count(callPushMirrorConstant))
}

func TestExecuteConfirmedOverwriteSkipsCreation(testInstance *testing.T) {
	recorder := &callRecorder{}
	hostingClient := &fakeHostingClient{recorder: recorder, repositoryExists: true}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	service := buildService(testInstance, hostingClient, mirrorManager, staticConfirmationPrompter{confirmed: true}, staticExecutableResolver{})

	executionError := service.Execute(context.Background(), buildServiceOptions())
	require.NoError(testInstance, executionError)

	require.Zero(testInstance, recorder.count(callCreateRepositoryConstant))
	require.Equal(testInstance, 1, recorder.count(callCloneMirrorConstant))
	require.Equal(testInstance, 1, recorder.count(callPushMirrorConstant))
}

func TestExecuteExistingDestinationWithoutPrompterAborts(testInstance *testing.T) {
	recorder := &callRecorder{}
	hostingClient := &fakeHostingClient{recorder: recorder, repositoryExists: true}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	service := buildService(testInstance, hostingClient, mirrorManager, nil, staticExecutableResolver{})

	executionError := service.Execute(context.Background(), buildServiceOptions())
	require.ErrorIs(testInstance, executionError, importer.ErrConfirmationUnavailable)
	require.Zero(testInstance, recorder.count(callCloneMirrorConstant))
}

func TestExecuteInvalidTokenStopsPipeline(testInstance *testing.T) {
	recorder := &callRecorder{}
	credentialsError := githubapi.InvalidCredentialsError{StatusCode: 401}
	hostingClient := &fakeHostingClient{recorder: recorder, validateTokenError: credentialsError}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	service := buildService(testInstance, hostingClient, mirrorManager, nil, staticExecutableResolver{})

	executionError := service.Execute(context.Background(), buildServiceOptions())
	var typedError githubapi.InvalidCredentialsError
	require.ErrorAs(testInstance, executionError, &typedError)
	require.Equal(testInstance, 401, typedError.StatusCode)

	require.Zero(testInstance, recorder.count(callRepositoryExistsConstant))
	require.Zero(testInstance, recorder.count(callCloneMirrorConstant))
}

func TestExecuteMissingDependenciesStopBeforeTokenValidation(testInstance *testing.T) {
	recorder := &callRecorder{}
	hostingClient := &fakeHostingClient{recorder: recorder}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	resolver := staticExecutableResolver{resolutionError: errors.New("not found")}
	service := buildService(testInstance, hostingClient, mirrorManager, nil, resolver)

	executionError := service.Execute(context.Background(), buildServiceOptions())
	var dependenciesError importer.MissingDependenciesError
	require.ErrorAs(testInstance, executionError, &dependenciesError)
	require.Equal(testInstance, []string{"git"}, dependenciesError.MissingExecutables)
	require.Empty(testInstance, recorder.calls)
}

func TestExecuteInvalidOptionsFailBeforeAnyCall(testInstance *testing.T) {
	recorder := &callRecorder{}
	hostingClient := &fakeHostingClient{recorder: recorder}
	mirrorManager := &fakeMirrorManager{recorder: recorder}
	service := buildService(testInstance, hostingClient, mirrorManager, nil, staticExecutableResolver{})

	options := buildServiceOptions()
	options.SourceURL = "https://example.com"

	executionError := service.Execute(context.Background(), options)
	require.Error(testInstance, executionError)
	require.Empty(testInstance, recorder.calls)
}

func TestExecuteRemovesStagingOnTransferFailures(testInstance *testing.T) {
	testCases := []struct {
		name       string
		cloneError error
		pushError  error
	}{
		{name: "clone_failure", cloneError: errors.New("clone failed")},
		{name: "push_failure", pushError: errors.New("push failed")},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recorder := &callRecorder{}
			hostingClient := &fakeHostingClient{recorder: recorder}
			mirrorManager := &fakeMirrorManager{recorder: recorder, cloneError: testCase.cloneError, pushError: testCase.pushError}
			service := buildService(testInstance, hostingClient, mirrorManager, nil, staticExecutableResolver{})

			executionError := service.Execute(context.Background(), buildServiceOptions())
			require.Error(testInstance, executionError)
			require.Equal(testInstance, 1, recorder.count(callRemoveStagingConstant))
		})
	}
}
