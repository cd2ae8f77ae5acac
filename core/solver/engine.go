package solver

import (
	"context"
	"time"
)

// Status reports the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	// StatusFeasible means the time budget ran out with an incumbent that is
	// not proven optimal.
	StatusFeasible
	StatusInfeasible
	// StatusTimeout means the time budget ran out before any feasible
	// assignment was found.
	StatusTimeout
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// HasAssignment reports whether a solution with this status carries values.
func (s Status) HasAssignment() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution is the engine's answer. Values is indexed like Model.Variables and
// is nil unless Status.HasAssignment.
type Solution struct {
	Status    Status
	Values    []float64
	Objective float64
	// Nodes counts the relaxations explored by the engine, when it tracks them.
	Nodes int
	// Err carries the engine failure when Status is StatusError.
	Err error
}

// Engine finds an assignment for a model within a wall-clock budget. It must
// return when the budget is spent, reporting the best assignment found so far.
type Engine interface {
	Solve(ctx context.Context, m *Model, budget time.Duration) Solution
}
