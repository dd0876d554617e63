package binutils

import (
	"errors"
	"fmt"
	"strings"
)

/*
Errors returned by the binutils package.
*/

////////////////////////////////////////////////////////////////////////////////

// ErrExecutableNotFound is returned when a toolchain executable is not on the
// PATH.
var ErrExecutableNotFound = errors.New("executable not found")

// CommandError is returned when a toolchain command exits unsuccessfully.
type CommandError struct {
	Command  []string
	ExitCode int
	Stderr   string
}

// NewCommandError constructs a new CommandError.
func NewCommandError(command []string, exitCode int, stderr string) CommandError {
	return CommandError{Command: command, ExitCode: exitCode, Stderr: stderr}
}

// Error returns a string representation of the error.
func (e CommandError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", strings.Join(e.Command, " "), e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Is returns true if the target error is a CommandError.
func (e CommandError) Is(target error) bool {
	_, ok := target.(CommandError)
	return ok
}
