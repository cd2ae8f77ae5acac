package scheduler

import "errors"

var (
	// ErrInfeasible means the hard constraints admit no schedule.
	ErrInfeasible = errors.New("schedule infeasible")
	// ErrTimeout means the time budget ran out before any schedule was found.
	ErrTimeout = errors.New("time budget exhausted without a feasible schedule")
	// ErrSolver wraps failures reported by the solving engine.
	ErrSolver = errors.New("solver error")
	// ErrInconsistent marks an assignment that breaks the model it was solved for.
	ErrInconsistent = errors.New("inconsistent assignment")
)
