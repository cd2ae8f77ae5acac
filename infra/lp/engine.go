package lp

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/kilianp07/courtsched/core/solver"
	"github.com/kilianp07/courtsched/infra/logger"
)

const (
	defaultTol    = 1e-9
	defaultIntTol = 1e-6
	// pruneGap is the minimum improvement a node must promise over the incumbent.
	pruneGap = 1e-7
)

// Engine is a branch-and-bound solver.Engine for binary linear programs.
type Engine struct {
	// Tol is the simplex optimality tolerance.
	Tol float64
	// IntTol is how far from 0 or 1 a binary may lie and still count as integral.
	IntTol float64
	log    logger.Logger
}

// NewEngine returns an engine with default tolerances. A nil logger disables logging.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Engine{Tol: defaultTol, IntTol: defaultIntTol, log: log}
}

type search struct {
	p        *problem
	tol      float64
	intTol   float64
	best     []float64
	bestObj  float64
	nodes    int
	failures int
	lastErr  error
	timedOut bool
	startErr string
}

// acceptStart installs m.Start as the incumbent when it is integral, within
// bounds and satisfies every constraint.
func (s *search) acceptStart(m *solver.Model) bool {
	if len(m.Start) != len(m.Variables) {
		s.startErr = "wrong length"
		return false
	}
	for _, i := range s.p.binary {
		if v := m.Start[i]; v != 0 && v != 1 {
			s.startErr = "binary " + m.Variables[i].Name + " is fractional"
			return false
		}
	}
	for i, v := range m.Start {
		if v < -s.intTol || v > s.p.upper[i]+s.intTol {
			s.startErr = "variable " + m.Variables[i].Name + " out of bounds"
			return false
		}
	}
	if name := m.Violated(m.Start, s.intTol); name != "" {
		s.startErr = "violates " + name
		return false
	}
	s.best = append([]float64(nil), m.Start...)
	s.bestObj = s.p.objective(s.best)
	return true
}

// Solve explores the branch-and-bound tree until it is exhausted or the budget
// expires. A non-positive budget means no time limit beyond ctx.
func (e *Engine) Solve(ctx context.Context, m *solver.Model, budget time.Duration) solver.Solution {
	if err := m.Validate(); err != nil {
		return solver.Solution{Status: solver.StatusError, Err: err}
	}
	if budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	start := time.Now()
	s := &search{p: newProblem(m), tol: e.Tol, intTol: e.IntTol, bestObj: math.Inf(1)}
	if s.acceptStart(m) {
		e.log.Infof("branch-and-bound starts from the supplied assignment, objective %.2f", m.Evaluate(s.best))
	} else if m.Start != nil {
		e.log.Warnf("supplied start assignment rejected: %s", s.startErr)
	}
	fixed := make([]float64, len(m.Variables))
	for i := range fixed {
		fixed[i] = math.NaN()
	}
	e.log.Debugw("branch-and-bound start", map[string]any{
		"variables":   len(m.Variables),
		"binaries":    len(s.p.binary),
		"constraints": len(s.p.rows),
		"budget":      budget.String(),
	})
	s.explore(ctx, fixed)

	sol := solver.Solution{Nodes: s.nodes}
	switch {
	case s.best != nil && (s.timedOut || s.failures > 0):
		sol.Status = solver.StatusFeasible
	case s.best != nil:
		sol.Status = solver.StatusOptimal
	case s.timedOut:
		sol.Status = solver.StatusTimeout
	case s.failures > 0:
		sol.Status = solver.StatusError
		sol.Err = s.lastErr
	default:
		sol.Status = solver.StatusInfeasible
	}
	if s.best != nil {
		sol.Values = s.best
		sol.Objective = m.Evaluate(s.best)
	}
	e.log.Infof("branch-and-bound finished: status=%s nodes=%d failures=%d elapsed=%s",
		sol.Status, s.nodes, s.failures, time.Since(start).Round(time.Millisecond))
	return sol
}

func (s *search) explore(ctx context.Context, fixed []float64) {
	if s.timedOut {
		return
	}
	if ctx.Err() != nil {
		s.timedOut = true
		return
	}
	s.nodes++
	res, err := s.p.relax(ctx, fixed, s.tol)
	if errors.Is(err, errDeadline) {
		s.timedOut = true
		return
	}
	if err != nil {
		s.failures++
		s.lastErr = err
		return
	}
	if !res.feasible {
		return
	}
	if s.best != nil && res.objective >= s.bestObj-pruneGap {
		return
	}

	branch := s.mostFractional(res.values)
	if branch < 0 {
		s.best = s.round(res.values)
		s.bestObj = res.objective
		return
	}
	for _, v := range [2]float64{1, 0} {
		child := append([]float64(nil), fixed...)
		child[branch] = v
		s.explore(ctx, child)
	}
}

// mostFractional returns the binary variable closest to 0.5, or -1 when all
// binaries are integral.
func (s *search) mostFractional(values []float64) int {
	best, dist := -1, math.Inf(1)
	for _, i := range s.p.binary {
		frac := values[i] - math.Floor(values[i])
		if frac <= s.intTol || frac >= 1-s.intTol {
			continue
		}
		if d := math.Abs(frac - 0.5); d < dist {
			best, dist = i, d
		}
	}
	return best
}

func (s *search) round(values []float64) []float64 {
	out := append([]float64(nil), values...)
	for _, i := range s.p.binary {
		out[i] = math.Round(out[i])
	}
	return out
}
