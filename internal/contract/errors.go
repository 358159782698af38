package contract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed git invocation.
type ErrorKind int

// All error kinds supported.
const (
	KindCommandFailure ErrorKind = iota // any failure not recognised as recoverable
	KindNoIndexYet                      // path has no entry at the requested stage or revision
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNoIndexYet:
		return "NoIndexYet"
	default:
		return "CommandFailure"
	}
}

// FatalExitCode is the status git uses when it dies on a usage or lookup error.
const FatalExitCode = 128

// NoIndexMarkers are the diagnostic fragments git prints when a path exists
// in the working tree but has no entry at the requested stage or revision.
// Matching relies on LocalGitExecutor forcing the C locale.
var NoIndexMarkers = []string{
	"exists on disk, but not in the index",
	"exists on disk, but not in '",
}

// InvalidObjectMarker is the diagnostic fragment git prints for a revision
// that names no object. Before the first commit every revision fails this way.
const InvalidObjectMarker = "invalid object name '"

// Sentinel errors for matching with errors.Is.
var (
	ErrNoIndexYet     = errors.New("path has no index entry yet")
	ErrCommandFailure = errors.New("git command failed")
	ErrCanceled       = errors.New("git command canceled")
)

// CommandError is the failure of a single git invocation.
// Error returns the diagnostic text exactly as git printed it, except for
// canceled invocations which report the cancellation instead.
type CommandError struct {
	Kind       ErrorKind
	Dir        string
	Subcommand string
	Args       []string
	ExitCode   int    // -1 when the process did not exit normally
	Message    string // stderr, or stdout when stderr is empty
	Err        error  // underlying exec or context error

	canceled bool
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.canceled {
		return fmt.Sprintf("git %s canceled: %v", e.Subcommand, e.Err)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("git %s exited with status %d", e.Subcommand, e.ExitCode)
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Is matches the classification sentinels.
func (e *CommandError) Is(target error) bool {
	switch target {
	case ErrNoIndexYet:
		return e.Kind == KindNoIndexYet
	case ErrCommandFailure:
		return e.Kind == KindCommandFailure
	case ErrCanceled:
		return e.canceled
	}
	return false
}

// Canceled reports whether the process was killed because its context ended.
func (e *CommandError) Canceled() bool {
	return e.canceled
}

// NewCommandError builds a classified failure from a finished process.
func NewCommandError(dir, subcommand string, args []string, exitCode int, message string, err error) *CommandError {
	return &CommandError{
		Kind:       ClassifyFailure(exitCode, message),
		Dir:        dir,
		Subcommand: subcommand,
		Args:       args,
		ExitCode:   exitCode,
		Message:    message,
		Err:        err,
	}
}

// NewCanceledError builds the failure of a process killed by its context.
// It is always a CommandFailure, never NoIndexYet.
func NewCanceledError(dir, subcommand string, args []string, message string, ctxErr error) *CommandError {
	return &CommandError{
		Kind:       KindCommandFailure,
		Dir:        dir,
		Subcommand: subcommand,
		Args:       args,
		ExitCode:   -1,
		Message:    message,
		Err:        ctxErr,
		canceled:   true,
	}
}

// ClassifyFailure maps an exit status and diagnostic to an ErrorKind.
// git has no dedicated status for a missing index entry, so the fatal status
// is combined with a marker match on the message.
func ClassifyFailure(exitCode int, message string) ErrorKind {
	if exitCode != FatalExitCode {
		return KindCommandFailure
	}
	for _, marker := range NoIndexMarkers {
		if strings.Contains(message, marker) {
			return KindNoIndexYet
		}
	}
	return KindCommandFailure
}

// IsInvalidObject reports whether err is git failing to resolve a revision.
// Such failures stay CommandFailure; only the caller knows whether the
// repository has no commits yet.
func IsInvalidObject(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.canceled {
		return false
	}
	return cmdErr.ExitCode == FatalExitCode && strings.Contains(cmdErr.Message, InvalidObjectMarker)
}

// IsNoIndexYet reports whether err is a NoIndexYet failure.
func IsNoIndexYet(err error) bool {
	return errors.Is(err, ErrNoIndexYet)
}
