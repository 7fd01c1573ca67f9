// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions the importer uses to
// run git in a testable manner. Command lifecycle messages mask transport
// credentials embedded in remote URLs.
package execshell
