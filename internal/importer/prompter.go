package importer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	confirmationSuffixConstant       = " [y/N]: "
	affirmativeShortResponseConstant = "y"
	affirmativeLongResponseConstant  = "yes"
	valuePromptTemplateConstant      = "%s: "
	lineDelimiterConstant            = '\n'
)

// IOConfirmationPrompter reads confirmation responses from an io.Reader.
type IOConfirmationPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewIOConfirmationPrompter constructs a prompter from the provided reader and writer.
func NewIOConfirmationPrompter(input io.Reader, output io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{reader: bufio.NewReader(input), writer: output}
}

// Confirm writes the prompt and interprets affirmative responses (y/yes).
func (prompter *IOConfirmationPrompter) Confirm(prompt string) (bool, error) {
	if prompter.writer != nil {
		if _, writeError := io.WriteString(prompter.writer, prompt+confirmationSuffixConstant); writeError != nil {
			return false, writeError
		}
	}

	response, readError := prompter.reader.ReadString(lineDelimiterConstant)
	if readError != nil && readError != io.EOF {
		return false, readError
	}

	switch strings.TrimSpace(strings.ToLower(response)) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
}

// LineInputPrompter collects free-form values from an io.Reader.
type LineInputPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLineInputPrompter constructs a value prompter from the provided reader and writer.
func NewLineInputPrompter(input io.Reader, output io.Writer) *LineInputPrompter {
	return &LineInputPrompter{reader: bufio.NewReader(input), writer: output}
}

// PromptForValue writes the label and returns the trimmed response line.
func (prompter *LineInputPrompter) PromptForValue(label string) (string, error) {
	if prompter.writer != nil {
		if _, writeError := fmt.Fprintf(prompter.writer, valuePromptTemplateConstant, label); writeError != nil {
			return "", writeError
		}
	}

	response, readError := prompter.reader.ReadString(lineDelimiterConstant)
	if readError != nil && readError != io.EOF {
		return "", readError
	}
	return strings.TrimSpace(response), nil
}
