package program

import (
	"errors"
	"fmt"
)

// Sentinel errors for program loading and execution.
var (
	// ErrInvalidType is returned when a step argument has the wrong YAML type,
	// for example a string where a number is required.
	ErrInvalidType = errors.New("program: invalid argument type")

	// ErrUnknownCommand is returned for a step whose command is not recognized.
	ErrUnknownCommand = errors.New("program: unknown command")

	// ErrMalformed is returned when a step is not a single-command mapping.
	ErrMalformed = errors.New("program: malformed step")

	// ErrTooLarge is returned when repeats expand past MaxInstructions.
	ErrTooLarge = errors.New("program: too many instructions")
)

// StepError locates a failure in the program source.
type StepError struct {
	// Step is the location of the failing step, e.g. "steps[3].steps[0]".
	Step string

	// Line is the 1-based source line, when known.
	Line int

	// Command is the command name, when known.
	Command string

	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	loc := e.Step
	if e.Line > 0 {
		loc = fmt.Sprintf("%s (line %d)", e.Step, e.Line)
	}
	if e.Command != "" {
		return fmt.Sprintf("program: %s %s: %v", loc, e.Command, e.Err)
	}
	return fmt.Sprintf("program: %s: %v", loc, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}
