package lp

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/courtsched/core/solver"
)

var (
	// errUnbounded is returned when a relaxation has no finite optimum.
	errUnbounded = errors.New("relaxation unbounded")
	// errDeadline is returned when the budget expires during a simplex run.
	errDeadline = errors.New("relaxation interrupted by deadline")
)

// solveStandard runs the simplex on a standard-form program
// (minimize cᵀx s.t. Ax = b, x >= 0).
func solveStandard(c []float64, a mat.Matrix, b []float64, tol float64) (float64, []float64, error) {
	return lp.Simplex(c, a, b, tol, nil)
}

// lpSolve points to the function used to solve relaxations. It can be
// overridden in tests to simulate solver failures.
var lpSolve = solveStandard

type simplexResult struct {
	x   []float64
	err error
}

// solveWithin runs the simplex in its own goroutine and gives up when ctx is
// done. An abandoned run finishes in the background and its result is
// discarded.
func solveWithin(ctx context.Context, c []float64, a mat.Matrix, b []float64, tol float64) ([]float64, error) {
	solve := lpSolve
	done := make(chan simplexResult, 1)
	go func() {
		var r simplexResult
		defer func() {
			if p := recover(); p != nil {
				r = simplexResult{err: fmt.Errorf("simplex panic: %v", p)}
			}
			done <- r
		}()
		_, r.x, r.err = solve(c, a, b, tol)
	}()
	select {
	case r := <-done:
		return r.x, r.err
	case <-ctx.Done():
		select {
		case r := <-done:
			return r.x, r.err
		default:
			return nil, errDeadline
		}
	}
}

// problem is a model rewritten for minimization with explicit bound rows for
// variables whose upper bound no equality row implies.
type problem struct {
	cost    []float64
	upper   []float64
	rows    []solver.Constraint
	binary  []int
	nVars   int
	flipped bool
	// modelRows counts the leading entries of rows taken from the model. The
	// rest are explicit bound rows.
	modelRows int
}

func newProblem(m *solver.Model) *problem {
	p := &problem{
		cost:    make([]float64, len(m.Variables)),
		upper:   make([]float64, len(m.Variables)),
		nVars:   len(m.Variables),
		flipped: m.Maximize,
		rows:    append([]solver.Constraint(nil), m.Constraints...),
	}
	p.modelRows = len(p.rows)
	for i, c := range m.Objective {
		if m.Maximize {
			c = -c
		}
		p.cost[i] = c
	}

	implied := make([]float64, len(m.Variables))
	for i := range implied {
		implied[i] = math.Inf(1)
	}
	for _, c := range m.Constraints {
		if c.Sense != solver.Equal || c.RHS < 0 || !positiveTerms(c.Terms) {
			continue
		}
		for _, t := range c.Terms {
			implied[t.Var] = math.Min(implied[t.Var], c.RHS/t.Coef)
		}
	}
	for i, v := range m.Variables {
		if v.Kind == solver.Binary {
			p.binary = append(p.binary, i)
		}
		ub := v.UpperBound()
		p.upper[i] = ub
		if math.IsInf(ub, 1) || implied[i] <= ub+1e-12 {
			continue
		}
		p.rows = append(p.rows, solver.Constraint{
			Name:  "bound:" + v.Name,
			Terms: []solver.Term{{Var: i, Coef: 1}},
			Sense: solver.LessEqual,
			RHS:   ub,
		})
	}
	return p
}

func positiveTerms(terms []solver.Term) bool {
	if len(terms) == 0 {
		return false
	}
	for _, t := range terms {
		if t.Coef <= 0 {
			return false
		}
	}
	return true
}

// relaxation is the outcome of solving one node.
type relaxation struct {
	feasible  bool
	objective float64
	values    []float64
}

// objective returns the minimization cost of an assignment.
func (p *problem) objective(values []float64) float64 {
	var f float64
	for i, v := range values {
		f += p.cost[i] * v
	}
	return f
}

// redundant reports whether a <= row holds for every value within the
// variable bounds, which makes it safe to leave out of the relaxation.
func (p *problem) redundant(coefs map[int]float64, sense solver.Sense, rhs float64) bool {
	if sense != solver.LessEqual {
		return false
	}
	var most float64
	for v, coef := range coefs {
		if coef > 0 {
			most += coef * p.upper[v]
		}
	}
	return most <= rhs+1e-9
}

// relax solves the linear relaxation with the variables in fixed (non-NaN
// entries) held at their values. Rows made redundant by the fixings are
// dropped and the simplex is abandoned with errDeadline once ctx is done.
//
//gocyclo:ignore
func (p *problem) relax(ctx context.Context, fixed []float64, tol float64) (res relaxation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simplex panic: %v", r)
		}
	}()

	type row struct {
		coefs map[int]float64
		sense solver.Sense
		rhs   float64
	}
	var kept []row
	used := make(map[int]bool)
	for ri, c := range p.rows {
		r := row{coefs: make(map[int]float64), sense: c.Sense, rhs: c.RHS}
		for _, t := range c.Terms {
			if v := fixed[t.Var]; !math.IsNaN(v) {
				r.rhs -= t.Coef * v
				continue
			}
			r.coefs[t.Var] += t.Coef
		}
		for v, coef := range r.coefs {
			if coef == 0 {
				delete(r.coefs, v)
			}
		}
		if len(r.coefs) == 0 {
			if !holds(0, r.sense, r.rhs, 1e-9) {
				return relaxation{}, nil
			}
			continue
		}
		if ri < p.modelRows && p.redundant(r.coefs, r.sense, r.rhs) {
			continue
		}
		for v := range r.coefs {
			used[v] = true
		}
		kept = append(kept, r)
	}

	values := make([]float64, p.nVars)
	col := make(map[int]int)
	var cols []int
	for i := 0; i < p.nVars; i++ {
		if v := fixed[i]; !math.IsNaN(v) {
			values[i] = v
			continue
		}
		if !used[i] {
			// Only the bound limits an unused variable.
			if p.cost[i] < 0 {
				if math.IsInf(p.upper[i], 1) {
					return relaxation{}, errUnbounded
				}
				values[i] = p.upper[i]
			}
			continue
		}
		col[i] = len(cols)
		cols = append(cols, i)
	}

	if len(kept) > 0 {
		slacks := 0
		for _, r := range kept {
			if r.sense != solver.Equal {
				slacks++
			}
		}
		nRows, nCols := len(kept), len(cols)+slacks
		if nRows > nCols {
			return relaxation{}, fmt.Errorf("relaxation has %d rows for %d columns", nRows, nCols)
		}
		a := mat.NewDense(nRows, nCols, nil)
		b := make([]float64, nRows)
		c := make([]float64, nCols)
		for j, v := range cols {
			c[j] = p.cost[v]
		}
		s := len(cols)
		for i, r := range kept {
			for v, coef := range r.coefs {
				a.Set(i, col[v], coef)
			}
			switch r.sense {
			case solver.LessEqual:
				a.Set(i, s, 1)
				s++
			case solver.GreaterEqual:
				a.Set(i, s, -1)
				s++
			}
			b[i] = r.rhs
		}

		x, err := solveWithin(ctx, c, a, b, tol)
		if errors.Is(err, lp.ErrInfeasible) {
			return relaxation{}, nil
		}
		if errors.Is(err, lp.ErrUnbounded) {
			return relaxation{}, errUnbounded
		}
		if err != nil {
			return relaxation{}, err
		}
		for j, v := range cols {
			values[v] = math.Max(0, x[j])
		}
	}

	return relaxation{feasible: true, objective: p.objective(values), values: values}, nil
}

func holds(lhs float64, sense solver.Sense, rhs, tol float64) bool {
	switch sense {
	case solver.LessEqual:
		return lhs <= rhs+tol
	case solver.GreaterEqual:
		return lhs >= rhs-tol
	default:
		return math.Abs(lhs-rhs) <= tol
	}
}
