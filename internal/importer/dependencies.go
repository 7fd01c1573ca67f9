package importer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/temirov/gitimport/internal/execshell"
	"github.com/temirov/gitimport/internal/githubapi"
)

const (
	missingDependenciesTemplateConstant  = "required executables not found: %s"
	missingDependenciesSeparatorConstant = ", "
)

var requiredExecutableNames = []string{string(execshell.CommandGit)}

// HostingClient exposes the hosting API operations the import pipeline needs.
type HostingClient interface {
	ValidateToken(executionContext context.Context) error
	RepositoryExists(executionContext context.Context, ownerAccount string, repositoryName string) (bool, error)
	ResolveOwnerType(executionContext context.Context, ownerAccount string) githubapi.OwnerType
	CreateRepository(executionContext context.Context, ownerAccount string, ownerType githubapi.OwnerType, repositoryName string, sourceURL string) (githubapi.CreatedRepository, error)
	UpdateDefaultBranch(executionContext context.Context, ownerAccount string, repositoryName string, branchName string) error
}

// MirrorManager exposes the git transfer operations the import pipeline needs.
type MirrorManager interface {
	CloneMirror(executionContext context.Context, sourceURL string, stagingPath string) error
	PushMirror(executionContext context.Context, stagingPath string, destinationURL string) error
	RemoveStaging(stagingPath string)
}

// ConfirmationPrompter gates destructive operations behind a user response.
type ConfirmationPrompter interface {
	Confirm(prompt string) (bool, error)
}

// ExecutableResolver locates executables on the current PATH.
type ExecutableResolver interface {
	LookPath(executableName string) (string, error)
}

// OSExecutableResolver resolves executables through the operating system PATH.
type OSExecutableResolver struct{}

// LookPath reports the absolute path of the named executable.
func (OSExecutableResolver) LookPath(executableName string) (string, error) {
	return exec.LookPath(executableName)
}

// MissingDependenciesError lists every required executable absent from PATH.
type MissingDependenciesError struct {
	MissingExecutables []string
}

// Error names all missing executables in one message.
func (dependenciesError MissingDependenciesError) Error() string {
	return fmt.Sprintf(missingDependenciesTemplateConstant, strings.Join(dependenciesError.MissingExecutables, missingDependenciesSeparatorConstant))
}

// CheckDependencies verifies every required executable resolves on PATH,
// collecting all missing names before reporting.
func CheckDependencies(resolver ExecutableResolver) error {
	var missingExecutables []string
	for _, executableName := range requiredExecutableNames {
		if _, resolutionError := resolver.LookPath(executableName); resolutionError != nil {
			missingExecutables = append(missingExecutables, executableName)
		}
	}
	if len(missingExecutables) > 0 {
		return MissingDependenciesError{MissingExecutables: missingExecutables}
	}
	return nil
}
