package solver

import (
	"fmt"
	"math"
)

// Kind distinguishes binary decision variables from continuous ones.
type Kind int

const (
	Continuous Kind = iota
	Binary
)

// Variable is a decision variable with lower bound 0.
type Variable struct {
	Name string
	Kind Kind
	// Upper bounds a continuous variable; +Inf when unbounded. Binary
	// variables are always bounded by 1.
	Upper float64
}

// UpperBound returns the effective upper bound of the variable.
func (v Variable) UpperBound() float64 {
	if v.Kind == Binary {
		return 1
	}
	return v.Upper
}

// Term is a coefficient applied to a variable index.
type Term struct {
	Var  int
	Coef float64
}

// Sense is the relation of a constraint.
type Sense int

const (
	LessEqual Sense = iota
	Equal
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// Constraint is a linear relation sum(Terms) Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Model is a linear program over binary and continuous variables. Objective
// holds one coefficient per variable.
type Model struct {
	Maximize    bool
	Variables   []Variable
	Objective   []float64
	Constraints []Constraint
	// Start is an optional feasible assignment engines may use as their
	// first incumbent.
	Start []float64
}

// AddVariable appends a variable with an objective coefficient and returns its index.
func (m *Model) AddVariable(v Variable, objective float64) int {
	m.Variables = append(m.Variables, v)
	m.Objective = append(m.Objective, objective)
	return len(m.Variables) - 1
}

// AddConstraint appends a constraint.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

// Validate checks indices, bounds and coefficients.
func (m *Model) Validate() error {
	if len(m.Objective) != len(m.Variables) {
		return fmt.Errorf("objective has %d coefficients for %d variables", len(m.Objective), len(m.Variables))
	}
	if m.Start != nil && len(m.Start) != len(m.Variables) {
		return fmt.Errorf("start has %d values for %d variables", len(m.Start), len(m.Variables))
	}
	for i, v := range m.Variables {
		if v.Kind == Continuous && (math.IsNaN(v.Upper) || v.Upper < 0) {
			return fmt.Errorf("variable %s: invalid upper bound %v", v.Name, v.Upper)
		}
		if math.IsNaN(m.Objective[i]) || math.IsInf(m.Objective[i], 0) {
			return fmt.Errorf("variable %s: invalid objective coefficient", v.Name)
		}
	}
	for _, c := range m.Constraints {
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("constraint %s: invalid right-hand side", c.Name)
		}
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= len(m.Variables) {
				return fmt.Errorf("constraint %s: variable index %d out of range", c.Name, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("constraint %s: invalid coefficient", c.Name)
			}
		}
	}
	return nil
}

// Evaluate returns the objective value of an assignment.
func (m *Model) Evaluate(values []float64) float64 {
	var f float64
	for i, c := range m.Objective {
		if i < len(values) {
			f += c * values[i]
		}
	}
	return f
}

// Violated returns the name of the first constraint the assignment breaks,
// or "" when all hold within tol.
func (m *Model) Violated(values []float64, tol float64) string {
	for _, c := range m.Constraints {
		var lhs float64
		for _, t := range c.Terms {
			lhs += t.Coef * values[t.Var]
		}
		switch c.Sense {
		case LessEqual:
			if lhs > c.RHS+tol {
				return c.Name
			}
		case GreaterEqual:
			if lhs < c.RHS-tol {
				return c.Name
			}
		case Equal:
			if math.Abs(lhs-c.RHS) > tol {
				return c.Name
			}
		}
	}
	return ""
}
