// Package githubapi provides a typed client for the hosting API operations the
// importer needs: token validation, repository existence probing, owner type
// resolution, repository creation, and default branch updates.
//
// The client wraps go-github with an oauth2 token source. The API base URL is
// injectable so tests can point the client at a local server.
package githubapi
