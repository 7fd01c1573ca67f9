package importer

import (
	"fmt"
	"strings"

	"github.com/temirov/gitimport/internal/gitmirror"
)

const (
	accessTokenFieldNameConstant        = "token"
	ownerAccountFieldNameConstant       = "owner"
	sourceURLFieldNameConstant          = "source"
	requiredOptionMessageConstant       = "value required"
	invalidOptionsErrorTemplateConstant = "%s: %s"
)

// ImportOptions carries the caller-supplied inputs for a single import run.
type ImportOptions struct {
	AccessToken    string
	OwnerAccount   string
	SourceURL      string
	DefaultBranch  string
	RepositoryName string
}

// ImportJob is a validated import with its derived repository name and staging path.
type ImportJob struct {
	Options        ImportOptions
	RepositoryName string
	StagingPath    string
}

// InvalidOptionsError reports a missing or unusable import option.
type InvalidOptionsError struct {
	FieldName string
	Message   string
}

// Error describes the invalid option.
func (optionsError InvalidOptionsError) Error() string {
	return fmt.Sprintf(invalidOptionsErrorTemplateConstant, optionsError.FieldName, optionsError.Message)
}

// PrepareImportJob validates the options and derives the repository name and
// staging path. It performs no network or filesystem work.
func PrepareImportJob(options ImportOptions, processIdentifier int) (ImportJob, error) {
	options.AccessToken = strings.TrimSpace(options.AccessToken)
	options.OwnerAccount = strings.TrimSpace(options.OwnerAccount)
	options.SourceURL = strings.TrimSpace(options.SourceURL)
	options.DefaultBranch = strings.TrimSpace(options.DefaultBranch)
	options.RepositoryName = strings.TrimSpace(options.RepositoryName)

	if len(options.AccessToken) == 0 {
		return ImportJob{}, InvalidOptionsError{FieldName: accessTokenFieldNameConstant, Message: requiredOptionMessageConstant}
	}
	if len(options.OwnerAccount) == 0 {
		return ImportJob{}, InvalidOptionsError{FieldName: ownerAccountFieldNameConstant, Message: requiredOptionMessageConstant}
	}
	if len(options.SourceURL) == 0 {
		return ImportJob{}, InvalidOptionsError{FieldName: sourceURLFieldNameConstant, Message: requiredOptionMessageConstant}
	}

	repositoryName := options.RepositoryName
	if len(repositoryName) == 0 {
		derivedName, derivationError := gitmirror.DeriveRepositoryName(options.SourceURL)
		if derivationError != nil {
			return ImportJob{}, derivationError
		}
		repositoryName = derivedName
	}

	return ImportJob{
		Options:        options,
		RepositoryName: repositoryName,
		StagingPath:    gitmirror.StagingPathForRepository(repositoryName, processIdentifier),
	}, nil
}
