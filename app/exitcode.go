package app

import (
	"errors"
	"os"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/scheduler"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitInvalid    = 2
	ExitInfeasible = 3
	ExitTimeout    = 4
	ExitSolver     = 5
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, model.ErrInvalidInput), errors.Is(err, model.ErrInvalidConfig), errors.Is(err, os.ErrNotExist):
		return ExitInvalid
	case errors.Is(err, scheduler.ErrInfeasible):
		return ExitInfeasible
	case errors.Is(err, scheduler.ErrTimeout):
		return ExitTimeout
	case errors.Is(err, scheduler.ErrSolver), errors.Is(err, scheduler.ErrInconsistent):
		return ExitSolver
	default:
		return ExitError
	}
}
