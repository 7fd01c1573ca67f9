package gitmirror

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	pathSeparatorConstant                = "/"
	scpPathDelimiterConstant             = ":"
	gitSuffixConstant                    = ".git"
	schemeSeparatorConstant              = "://"
	remoteURLParseErrorTemplateConstant  = "%s: %s"
	requiredValueMessageConstant         = "value required"
	missingRepositoryNameMessageConstant = "repository name could not be derived"
	stagingDirectoryNameTemplateConstant = "git-import-%s-%d"
	authenticatedPushURLTemplateConstant = "https://%s@%s/%s/%s%s"
	destinationHostConstant              = "github.com"
	destinationWebURLTemplateConstant    = "https://%s/%s/%s"
)

// RemoteURLParseError indicates a source URL could not yield a repository name.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// DeriveRepositoryName extracts the repository name from a source URL.
// The name is the final path segment with any trailing .git suffix removed.
func DeriveRepositoryName(sourceURL string) (string, error) {
	trimmedSource := strings.TrimSpace(sourceURL)
	if len(trimmedSource) == 0 {
		return "", RemoteURLParseError{Input: sourceURL, Message: requiredValueMessageConstant}
	}

	hostAndPath := trimmedSource
	if schemeIndex := strings.Index(hostAndPath, schemeSeparatorConstant); schemeIndex != -1 {
		hostAndPath = hostAndPath[schemeIndex+len(schemeSeparatorConstant):]
	}
	hostAndPath = strings.TrimRight(hostAndPath, pathSeparatorConstant)

	// scp-style remotes (git@host:owner/name.git) delimit the path with a colon.
	slashIndex := strings.LastIndex(hostAndPath, pathSeparatorConstant)
	colonIndex := strings.LastIndex(hostAndPath, scpPathDelimiterConstant)
	segmentStartIndex := slashIndex
	if colonIndex > segmentStartIndex {
		segmentStartIndex = colonIndex
	}
	if segmentStartIndex == -1 {
		return "", RemoteURLParseError{Input: sourceURL, Message: missingRepositoryNameMessageConstant}
	}

	finalSegment := strings.TrimSuffix(hostAndPath[segmentStartIndex+1:], gitSuffixConstant)
	trimmedSegment := strings.TrimSpace(finalSegment)
	if len(trimmedSegment) == 0 {
		return "", RemoteURLParseError{Input: sourceURL, Message: missingRepositoryNameMessageConstant}
	}

	return trimmedSegment, nil
}

// StagingPathForRepository derives the per-run staging directory path.
// The path combines the repository name with the process identifier so
// concurrent runs cannot collide.
func StagingPathForRepository(repositoryName string, processIdentifier int) string {
	stagingDirectoryName := fmt.Sprintf(stagingDirectoryNameTemplateConstant, repositoryName, processIdentifier)
	return filepath.Join(os.TempDir(), stagingDirectoryName)
}

// FormatAuthenticatedPushURL builds the destination URL with the access token
// embedded as transport credentials.
func FormatAuthenticatedPushURL(accessToken string, ownerAccount string, repositoryName string) string {
	return fmt.Sprintf(authenticatedPushURLTemplateConstant, accessToken, destinationHostConstant, ownerAccount, repositoryName, gitSuffixConstant)
}

// FormatDestinationWebURL builds the browsable destination repository URL.
func FormatDestinationWebURL(ownerAccount string, repositoryName string) string {
	return fmt.Sprintf(destinationWebURLTemplateConstant, destinationHostConstant, ownerAccount, repositoryName)
}
