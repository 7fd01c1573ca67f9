// Package gitmirror contains helpers for mirroring repositories between remotes.
//
// It derives repository names and staging paths from source URLs, formats
// credentialed destination URLs, and exposes Manager for performing full
// mirror clones and pushes through the git executable.
package gitmirror
