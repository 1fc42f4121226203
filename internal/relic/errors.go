package relic

import (
	"errors"
	"fmt"
)

// Domain errors for relic computations.
var (
	// ErrInvalidInput indicates malformed or mutually exclusive configuration.
	ErrInvalidInput = errors.New("relic: invalid input")

	// ErrConvergence indicates an iterative search exceeded its budget.
	ErrConvergence = errors.New("relic: iteration did not converge")

	// ErrNumerical indicates a quadrature could not reach its tolerance.
	ErrNumerical = errors.New("relic: numerical tolerance not reached")
)

// NoSpecies marks an Error that is not tied to a single species.
const NoSpecies = -1

// Error wraps a sentinel with the operation and species that failed.
type Error struct {
	Op       string
	Species  int
	Residual float64
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	prefix := e.Op
	if e.Species != NoSpecies {
		prefix = fmt.Sprintf("%s (species %d)", e.Op, e.Species)
	}
	if e.Err == ErrInvalidInput {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Err, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s (last residual %.3e)", prefix, e.Err, e.Msg, e.Residual)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Invalid builds an ErrInvalidInput error.
func Invalid(op string, species int, format string, args ...any) error {
	return &Error{Op: op, Species: species, Msg: fmt.Sprintf(format, args...), Err: ErrInvalidInput}
}

// NotConverged builds an ErrConvergence error reporting the last residual.
func NotConverged(op string, species int, residual float64, msg string) error {
	return &Error{Op: op, Species: species, Residual: residual, Msg: msg, Err: ErrConvergence}
}

// Numerical builds an ErrNumerical error reporting the last residual.
func Numerical(op string, species int, residual float64, msg string) error {
	return &Error{Op: op, Species: species, Residual: residual, Msg: msg, Err: ErrNumerical}
}
