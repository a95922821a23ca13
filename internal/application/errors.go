package application

import (
	"errors"
	"fmt"
)

// Application error types
var (
	ErrNotStarted = errors.New("application is not started")
)

// StartupError records which startup stage failed.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup %s failed: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// NewStartupError creates a new startup error
func NewStartupError(stage string, err error) *StartupError {
	return &StartupError{
		Stage: stage,
		Err:   err,
	}
}
