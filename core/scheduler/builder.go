package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/preferences"
	"github.com/kilianp07/courtsched/core/roundrobin"
	"github.com/kilianp07/courtsched/core/solver"
)

// Weights are the objective penalties.
type Weights struct {
	Dummy      float64
	BackToBack float64
}

// Placement ties a binary variable to the match and slot it assigns.
type Placement struct {
	Match int
	Slot  int
	Var   int
}

// Adjacency is the indicator of a player playing in two consecutive time
// blocks. Its variable is pushed to 1 exactly when both blocks are used.
type Adjacency struct {
	Player string
	From   string
	To     string
	Var    int
}

// Build is the assignment model together with the lookups needed to read a
// solution back.
type Build struct {
	Model      *solver.Model
	Matches    []roundrobin.Match
	Slots      []model.Slot
	Blocks     map[string]model.TimeBlock
	Prefs      preferences.Table
	Weights    Weights
	Placements []Placement
	// ByMatch lists placement indices per match.
	ByMatch   [][]int
	Adjacency []Adjacency
	// Unplaceable lists matches without any eligible slot.
	Unplaceable []string
}

// Inputs gathers what the model is built from.
type Inputs struct {
	Roster  *model.Roster
	Matches []roundrobin.Match
	Prefs   preferences.Table
	Weights Weights
}

// BuildModel creates one binary variable per match and slot that the match's
// division may use and that every player's demands allow. The objective
// maximizes the players' slot preferences minus the dummy and back-to-back
// penalties.
//
//gocyclo:ignore
func BuildModel(in Inputs) (*Build, error) {
	r := in.Roster
	if r == nil {
		return nil, fmt.Errorf("%w: nil roster", model.ErrInvalidInput)
	}
	players := r.PlayerIndex()
	divisions := r.DivisionIndex()
	b := &Build{
		Model:   &solver.Model{Maximize: true},
		Matches: in.Matches,
		Slots:   r.Slots,
		Blocks:  r.TimeBlockIndex(),
		Prefs:   in.Prefs,
		Weights: in.Weights,
		ByMatch: make([][]int, len(in.Matches)),
	}
	for _, s := range r.Slots {
		if _, ok := b.Blocks[s.TimeBlock]; !ok {
			return nil, fmt.Errorf("%w: slot %s references unknown time block %s", model.ErrInvalidInput, s.ID, s.TimeBlock)
		}
	}

	// player -> time block -> variables
	playerBlock := make(map[string]map[string][]int)
	slotVars := make([][]int, len(r.Slots))
	for mi, m := range in.Matches {
		div, ok := divisions[m.Division]
		if !ok {
			return nil, fmt.Errorf("%w: match %s references unknown division %s", model.ErrInvalidInput, m.ID, m.Division)
		}
		p1, ok1 := players[m.Player1]
		p2, ok2 := players[m.Player2]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%w: match %s references unknown player", model.ErrInvalidInput, m.ID)
		}
		eligible := setOf(div.TimeBlocks)
		var terms []solver.Term
		for si, s := range r.Slots {
			if !eligible[s.TimeBlock] || !allows(p1, s.TimeBlock) || !allows(p2, s.TimeBlock) {
				continue
			}
			coef := float64(in.Prefs.Value(p1.ID, s.ID) + in.Prefs.Value(p2.ID, s.ID))
			if s.Dummy {
				coef -= in.Weights.Dummy
			}
			v := b.Model.AddVariable(solver.Variable{
				Name: fmt.Sprintf("x[%s,%s]", m.ID, s.ID),
				Kind: solver.Binary,
			}, coef)
			b.ByMatch[mi] = append(b.ByMatch[mi], len(b.Placements))
			b.Placements = append(b.Placements, Placement{Match: mi, Slot: si, Var: v})
			terms = append(terms, solver.Term{Var: v, Coef: 1})
			slotVars[si] = append(slotVars[si], v)
			for _, p := range [2]string{p1.ID, p2.ID} {
				if playerBlock[p] == nil {
					playerBlock[p] = make(map[string][]int)
				}
				playerBlock[p][s.TimeBlock] = append(playerBlock[p][s.TimeBlock], v)
			}
		}
		if len(terms) == 0 {
			b.Unplaceable = append(b.Unplaceable, m.ID)
		}
		b.Model.AddConstraint(solver.Constraint{
			Name:  "match:" + m.ID,
			Terms: terms,
			Sense: solver.Equal,
			RHS:   1,
		})
	}

	// Rows with a single variable are implied by the match rows.
	for si, vars := range slotVars {
		if len(vars) < 2 {
			continue
		}
		b.Model.AddConstraint(solver.Constraint{
			Name:  "slot:" + r.Slots[si].ID,
			Terms: unitTerms(vars),
			Sense: solver.LessEqual,
			RHS:   1,
		})
	}

	ids := make([]string, 0, len(playerBlock))
	for id := range playerBlock {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	ordered := r.OrderedTimeBlocks()
	for _, p := range ids {
		byBlock := playerBlock[p]
		for _, tb := range ordered {
			if vars := byBlock[tb.ID]; len(vars) > 1 {
				b.Model.AddConstraint(solver.Constraint{
					Name:  fmt.Sprintf("player:%s@%s", p, tb.ID),
					Terms: unitTerms(vars),
					Sense: solver.LessEqual,
					RHS:   1,
				})
			}
		}
		if in.Weights.BackToBack <= 0 {
			continue
		}
		for i := 1; i < len(ordered); i++ {
			from, to := ordered[i-1], ordered[i]
			if !from.Precedes(to) || len(byBlock[from.ID]) == 0 || len(byBlock[to.ID]) == 0 {
				continue
			}
			y := b.Model.AddVariable(solver.Variable{
				Name:  fmt.Sprintf("b2b[%s,%s,%s]", p, from.ID, to.ID),
				Upper: math.Inf(1),
			}, -in.Weights.BackToBack)
			terms := unitTerms(append(append([]int(nil), byBlock[from.ID]...), byBlock[to.ID]...))
			terms = append(terms, solver.Term{Var: y, Coef: -1})
			b.Model.AddConstraint(solver.Constraint{
				Name:  fmt.Sprintf("b2b:%s@%s>%s", p, from.ID, to.ID),
				Terms: terms,
				Sense: solver.LessEqual,
				RHS:   1,
			})
			b.Adjacency = append(b.Adjacency, Adjacency{Player: p, From: from.ID, To: to.ID, Var: y})
		}
	}
	return b, nil
}

func allows(p model.Player, timeBlock string) bool {
	if !p.HasDemands() {
		return true
	}
	for _, tb := range p.Demands {
		if tb == timeBlock {
			return true
		}
	}
	return false
}

func setOf(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func unitTerms(vars []int) []solver.Term {
	out := make([]solver.Term, len(vars))
	for i, v := range vars {
		out[i] = solver.Term{Var: v, Coef: 1}
	}
	return out
}
