package cli

import (
	"errors"
	"fmt"
)

// Exit codes returned by the florence binary.
const (
	// ExitOK means the command succeeded.
	ExitOK = 0
	// ExitFailure is the generic failure code.
	ExitFailure = 1
	// ExitConfig means the configuration could not be loaded or validated.
	ExitConfig = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution. Code carries
// the process exit code; zero means ExitFailure.
type CommandError struct {
	Command string
	Err     error
	Code    int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError with the default failure code.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
		Code:    ExitFailure,
	}
}

// ExitCode maps an error to the process exit code: nil is ExitOK, a
// ConfigError is ExitConfig, a CommandError carries its own code, and
// anything else is ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return ExitConfig
	}

	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		if cmdErr.Code != 0 {
			return cmdErr.Code
		}
		return ExitFailure
	}

	return ExitFailure
}
