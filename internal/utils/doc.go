// Package utils exposes reusable helpers consumed by the importer CLI.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging for the CLI.
package utils
