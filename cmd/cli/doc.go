// Package cli assembles the gitimport command-line application: configuration
// loading, logger creation, interrupt handling, and the import command wiring.
package cli
