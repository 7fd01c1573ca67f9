package execshell

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandFailedErrorTemplateConstant        = "%s failed with exit code %d%s"
	commandExecutionErrorTemplateConstant     = "%s execution failed: %s"
	standardErrorDetailTemplateConstant       = ": %s"
	gitExecutableNameConstant                 = "git"
)

// CommandName identifies a supported executable.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName(gitExecutableNameConstant)

// CommandDetails describes the arguments and environment for an invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Sentinel construction errors.
var (
	ErrLoggerNotConfigured        = errors.New(loggerNotConfiguredMessageConstant)
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandFailedError reports a command completing with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including captured standard error output.
func (failedError CommandFailedError) Error() string {
	formatter := CommandMessageFormatter{}
	standardErrorDetail := ""
	if len(failedError.Result.StandardError) > 0 {
		standardErrorDetail = fmt.Sprintf(standardErrorDetailTemplateConstant, failedError.Result.StandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, formatter.CommandLabel(failedError.Command), failedError.Result.ExitCode, standardErrorDetail)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	formatter := CommandMessageFormatter{}
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, formatter.CommandLabel(executionError.Command), executionError.Cause)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ShellExecutor runs external commands while logging lifecycle events.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs a ShellExecutor from the provided logger and runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  noopCommandEventObserver{},
		formatter: CommandMessageFormatter{},
	}, nil
}

// SetCommandEventObserver installs an observer notified of command lifecycle events.
func (executor *ShellExecutor) SetCommandEventObserver(observer CommandEventObserver) {
	if observer == nil {
		executor.observer = noopCommandEventObserver{}
		return
	}
	executor.observer = observer
}

// Execute runs the supplied command and classifies the outcome.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.observer.CommandStarted(command)
	executor.logger.Info(executor.formatter.BuildStartedMessage(command))

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.observer.CommandExecutionFailed(command, runError)
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError))
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Error(executor.formatter.BuildFailureMessage(command, executionResult))
		return ExecutionResult{}, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessage(command))
	return executionResult, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}
