package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v38/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	accessTokenFieldNameConstant              = "access_token"
	ownerFieldNameConstant                    = "owner"
	repositoryFieldNameConstant               = "repository"
	requiredValueMessageConstant              = "value required"
	loggerNotConfiguredMessageConstant        = "logger not configured"
	invalidBaseURLTemplateConstant            = "invalid API base URL %q: %w"
	baseURLTrailingSlashConstant              = "/"
	invalidInputErrorTemplateConstant         = "%s: %s"
	operationErrorMessageTemplateConstant     = "%s operation failed"
	operationErrorWithCauseTemplateConstant   = "%s operation failed: %s"
	invalidCredentialsTemplateConstant        = "token rejected by identity endpoint (status %d)"
	creationMissingIdentifierTemplateConstant = "repository creation returned no identifier: %s"
	repositoryDescriptionTemplateConstant     = "Imported from %s"
	ownerTypeLookupFailedMessageConstant      = "Owner type lookup failed; assuming personal account"
	ownerAccountLogFieldConstant              = "owner"
	repositoryVisibilityPrivateConstant       = false
	validateTokenOperationNameConstant        = OperationName("ValidateToken")
	repositoryExistsOperationNameConstant     = OperationName("RepositoryExists")
	createRepositoryOperationNameConstant     = OperationName("CreateRepository")
	updateDefaultBranchOperationNameConstant  = OperationName("UpdateDefaultBranch")
)

// OperationName describes a named hosting API workflow supported by the client.
type OperationName string

// ClientConfiguration describes how to reach the hosting API.
type ClientConfiguration struct {
	AccessToken string
	APIBaseURL  string
	HTTPClient  *http.Client
}

// CreatedRepository captures the observable results of repository creation.
type CreatedRepository struct {
	Identifier int64
	WebURL     string
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for hosting API operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// InvalidCredentialsError indicates the identity endpoint rejected the token.
type InvalidCredentialsError struct {
	StatusCode int
}

// Error describes the rejection.
func (credentialsError InvalidCredentialsError) Error() string {
	return fmt.Sprintf(invalidCredentialsTemplateConstant, credentialsError.StatusCode)
}

// RepositoryCreationError indicates the creation response carried no repository identifier.
type RepositoryCreationError struct {
	RawResponse string
}

// Error describes the failed creation including the raw API response for diagnosis.
func (creationError RepositoryCreationError) Error() string {
	return fmt.Sprintf(creationMissingIdentifierTemplateConstant, creationError.RawResponse)
}

// ErrLoggerNotConfigured indicates the client was constructed without a logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// Client coordinates hosting API operations through an authenticated go-github client.
type Client struct {
	logger       *zap.Logger
	githubClient *github.Client
}

// NewClient constructs an authenticated hosting API client.
func NewClient(logger *zap.Logger, configuration ClientConfiguration) (*Client, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	trimmedAccessToken := strings.TrimSpace(configuration.AccessToken)
	if len(trimmedAccessToken) == 0 {
		return nil, InvalidInputError{FieldName: accessTokenFieldNameConstant, Message: requiredValueMessageConstant}
	}

	oauthContext := context.Background()
	if configuration.HTTPClient != nil {
		oauthContext = context.WithValue(oauthContext, oauth2.HTTPClient, configuration.HTTPClient)
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: trimmedAccessToken})
	authenticatedHTTPClient := oauth2.NewClient(oauthContext, tokenSource)
	githubClient := github.NewClient(authenticatedHTTPClient)

	if len(configuration.APIBaseURL) > 0 {
		baseURLValue := configuration.APIBaseURL
		if !strings.HasSuffix(baseURLValue, baseURLTrailingSlashConstant) {
			baseURLValue = baseURLValue + baseURLTrailingSlashConstant
		}
		parsedBaseURL, parseError := url.Parse(baseURLValue)
		if parseError != nil {
			return nil, fmt.Errorf(invalidBaseURLTemplateConstant, configuration.APIBaseURL, parseError)
		}
		githubClient.BaseURL = parsedBaseURL
	}

	return &Client{logger: logger, githubClient: githubClient}, nil
}

// ValidateToken confirms the access token through the identity endpoint.
// Only HTTP 200 counts as a usable token.
func (client *Client) ValidateToken(executionContext context.Context) error {
	_, response, lookupError := client.githubClient.Users.Get(executionContext, "")
	if response != nil && response.StatusCode != http.StatusOK {
		return InvalidCredentialsError{StatusCode: response.StatusCode}
	}
	if lookupError != nil {
		return OperationError{Operation: validateTokenOperationNameConstant, Cause: lookupError}
	}
	return nil
}

// RepositoryExists reports whether the destination repository already exists.
// HTTP 200 means it exists; any other status means it does not.
func (client *Client) RepositoryExists(executionContext context.Context, ownerAccount string, repositoryName string) (bool, error) {
	if validationError := validateOwnerAndRepository(ownerAccount, repositoryName); validationError != nil {
		return false, validationError
	}

	_, response, lookupError := client.githubClient.Repositories.Get(executionContext, ownerAccount, repositoryName)
	if response != nil {
		return response.StatusCode == http.StatusOK, nil
	}
	if lookupError != nil {
		return false, OperationError{Operation: repositoryExistsOperationNameConstant, Cause: lookupError}
	}
	return false, nil
}

// ResolveOwnerType determines whether the destination account is an organization.
// Lookup failures fall open to the personal account scope and are logged.
func (client *Client) ResolveOwnerType(executionContext context.Context, ownerAccount string) OwnerType {
	accountDetails, _, lookupError := client.githubClient.Users.Get(executionContext, ownerAccount)
	if lookupError != nil || accountDetails == nil {
		client.logger.Error(
			ownerTypeLookupFailedMessageConstant,
			zap.String(ownerAccountLogFieldConstant, ownerAccount),
			zap.Error(lookupError),
		)
		return UserOwnerType
	}
	return OwnerTypeFromAccountType(accountDetails.GetType())
}

// CreateRepository creates the destination repository under the resolved owner scope.
func (client *Client) CreateRepository(executionContext context.Context, ownerAccount string, ownerType OwnerType, repositoryName string, sourceURL string) (CreatedRepository, error) {
	if validationError := validateOwnerAndRepository(ownerAccount, repositoryName); validationError != nil {
		return CreatedRepository{}, validationError
	}

	repositoryRequest := &github.Repository{
		Name:        github.String(repositoryName),
		Private:     github.Bool(repositoryVisibilityPrivateConstant),
		Description: github.String(fmt.Sprintf(repositoryDescriptionTemplateConstant, sourceURL)),
	}

	createdRepository, _, creationError := client.githubClient.Repositories.Create(executionContext, ownerType.OrganizationParameter(ownerAccount), repositoryRequest)
	if creationError != nil {
		return CreatedRepository{}, OperationError{Operation: createRepositoryOperationNameConstant, Cause: creationError}
	}
	if createdRepository == nil || createdRepository.ID == nil {
		return CreatedRepository{}, RepositoryCreationError{RawResponse: github.Stringify(createdRepository)}
	}

	return CreatedRepository{Identifier: createdRepository.GetID(), WebURL: createdRepository.GetHTMLURL()}, nil
}

// UpdateDefaultBranch repoints the destination repository's default branch.
func (client *Client) UpdateDefaultBranch(executionContext context.Context, ownerAccount string, repositoryName string, branchName string) error {
	if validationError := validateOwnerAndRepository(ownerAccount, repositoryName); validationError != nil {
		return validationError
	}

	repositoryUpdate := &github.Repository{DefaultBranch: github.String(branchName)}
	_, _, updateError := client.githubClient.Repositories.Edit(executionContext, ownerAccount, repositoryName, repositoryUpdate)
	if updateError != nil {
		return OperationError{Operation: updateDefaultBranchOperationNameConstant, Cause: updateError}
	}
	return nil
}

func validateOwnerAndRepository(ownerAccount string, repositoryName string) error {
	if len(strings.TrimSpace(ownerAccount)) == 0 {
		return InvalidInputError{FieldName: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(repositoryName)) == 0 {
		return InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}
