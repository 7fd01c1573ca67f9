package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCloneSubcommandNameConstant = "clone"
	gitPushSubcommandNameConstant  = "push"
	gitMirrorFlagConstant          = "--mirror"
)

const (
	gitMirrorCloneStartTemplateConstant            = "Mirroring %s into %s"
	gitMirrorCloneSuccessTemplateConstant          = "Mirrored %s into %s"
	gitMirrorCloneFailureTemplateConstant          = "Failed to mirror %s into %s (exit code %d%s)"
	gitMirrorCloneExecutionFailureTemplateConstant = "Unable to mirror %s into %s: %s"
	gitMirrorPushStartTemplateConstant             = "Pushing all references to %s"
	gitMirrorPushSuccessTemplateConstant           = "Pushed all references to %s"
	gitMirrorPushFailureTemplateConstant           = "Failed to push all references to %s (exit code %d%s)"
	gitMirrorPushExecutionFailureTemplateConstant  = "Unable to push all references to %s: %s"
)

const (
	credentialSchemeSeparatorConstant = "://"
	credentialHostSeparatorConstant   = "@"
	credentialMaskConstant            = "***"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

// CommandLabel renders the command with credential-bearing arguments masked.
func (formatter CommandMessageFormatter) CommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		maskedArguments := make([]string, 0, len(command.Details.Arguments))
		for _, argument := range command.Details.Arguments {
			maskedArguments = append(maskedArguments, MaskTransportCredentials(argument))
		}
		commandLabel = commandLabel + commandArgumentsJoinSeparatorConstant + strings.Join(maskedArguments, commandArgumentsJoinSeparatorConstant)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

// MaskTransportCredentials removes embedded userinfo from URL-shaped values.
func MaskTransportCredentials(value string) string {
	schemeIndex := strings.Index(value, credentialSchemeSeparatorConstant)
	if schemeIndex == -1 {
		return value
	}
	remainder := value[schemeIndex+len(credentialSchemeSeparatorConstant):]
	credentialIndex := strings.Index(remainder, credentialHostSeparatorConstant)
	if credentialIndex == -1 {
		return value
	}
	return value[:schemeIndex+len(credentialSchemeSeparatorConstant)] + credentialMaskConstant + remainder[credentialIndex:]
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGit && len(command.Details.Arguments) > 0 {
		subcommand := strings.TrimSpace(command.Details.Arguments[0])
		isMirror := containsArgument(command.Details.Arguments, gitMirrorFlagConstant)
		switch {
		case subcommand == gitCloneSubcommandNameConstant && isMirror:
			return formatter.describeMirrorClone(command, result, failure, stage)
		case subcommand == gitPushSubcommandNameConstant && isMirror:
			return formatter.describeMirrorPush(command, result, failure, stage)
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeMirrorClone(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.positionalArguments(command.Details.Arguments[1:])
	sourceLabel := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	destinationLabel := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitMirrorCloneStartTemplateConstant, sourceLabel, destinationLabel)
	case messageStageSuccess:
		return fmt.Sprintf(gitMirrorCloneSuccessTemplateConstant, sourceLabel, destinationLabel)
	case messageStageFailure:
		return fmt.Sprintf(gitMirrorCloneFailureTemplateConstant, sourceLabel, destinationLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitMirrorCloneExecutionFailureTemplateConstant, sourceLabel, destinationLabel, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeMirrorPush(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.positionalArguments(command.Details.Arguments[1:])
	destinationLabel := formatter.ensureValue(MaskTransportCredentials(formatter.argumentAtIndex(positionalArguments, 0)))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitMirrorPushStartTemplateConstant, destinationLabel)
	case messageStageSuccess:
		return fmt.Sprintf(gitMirrorPushSuccessTemplateConstant, destinationLabel)
	case messageStageFailure:
		return fmt.Sprintf(gitMirrorPushFailureTemplateConstant, destinationLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitMirrorPushExecutionFailureTemplateConstant, destinationLabel, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.CommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, "-") {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func containsArgument(arguments []string, target string) bool {
	for _, argument := range arguments {
		if argument == target {
			return true
		}
	}
	return false
}
