package scheduler

import (
	"sort"

	"github.com/kilianp07/courtsched/core/model"
)

// warmStartSteps bounds the placements tried while searching for a start
// assignment.
const warmStartSteps = 20000

// placer assigns matches one at a time, always taking the match with the
// fewest free placements, and backtracks when some match runs out of room.
type placer struct {
	b         *Build
	chosen    []int
	slotUsed  []bool
	busy      map[string]map[string]bool
	neighbors map[string][]string
	steps     int
	limit     int
}

// WarmStart searches for an assignment that satisfies every constraint of
// the model, preferring placements with a better objective contribution. It
// returns one value per model variable, or nil when no assignment is found
// within the step limit.
func (b *Build) WarmStart(limit int) []float64 {
	if len(b.Unplaceable) > 0 {
		return nil
	}
	pl := &placer{
		b:         b,
		chosen:    make([]int, len(b.Matches)),
		slotUsed:  make([]bool, len(b.Slots)),
		busy:      make(map[string]map[string]bool),
		neighbors: neighbors(b.Blocks),
		limit:     limit,
	}
	for i := range pl.chosen {
		pl.chosen[i] = -1
	}
	if !pl.place(len(b.Matches)) {
		return nil
	}

	values := make([]float64, len(b.Model.Variables))
	for _, pi := range pl.chosen {
		values[b.Placements[pi].Var] = 1
	}
	for _, a := range b.Adjacency {
		if pl.busy[a.Player][a.From] && pl.busy[a.Player][a.To] {
			values[a.Var] = 1
		}
	}
	return values
}

func (pl *placer) place(left int) bool {
	if left == 0 {
		return true
	}
	match, options := -1, []int(nil)
	for mi := range pl.b.Matches {
		if pl.chosen[mi] >= 0 {
			continue
		}
		opts := pl.options(mi)
		if len(opts) == 0 {
			return false
		}
		if match < 0 || len(opts) < len(options) {
			match, options = mi, opts
		}
	}
	scores := make(map[int]float64, len(options))
	for _, pi := range options {
		scores[pi] = pl.score(pi)
	}
	sort.SliceStable(options, func(i, j int) bool { return scores[options[i]] > scores[options[j]] })

	for _, pi := range options {
		if pl.steps >= pl.limit {
			return false
		}
		pl.steps++
		pl.set(match, pi, true)
		if pl.place(left - 1) {
			return true
		}
		pl.set(match, pi, false)
	}
	return false
}

// options lists the placements of match mi whose slot is free and whose
// players are both idle in the slot's time block.
func (pl *placer) options(mi int) []int {
	m := pl.b.Matches[mi]
	var out []int
	for _, pi := range pl.b.ByMatch[mi] {
		s := pl.b.Slots[pl.b.Placements[pi].Slot]
		if pl.slotUsed[pl.b.Placements[pi].Slot] || pl.busy[m.Player1][s.TimeBlock] || pl.busy[m.Player2][s.TimeBlock] {
			continue
		}
		out = append(out, pi)
	}
	return out
}

// score is the placement's objective coefficient less the back-to-back
// penalties it would add given the matches placed so far.
func (pl *placer) score(pi int) float64 {
	p := pl.b.Placements[pi]
	m := pl.b.Matches[p.Match]
	tb := pl.b.Slots[p.Slot].TimeBlock
	score := pl.b.Model.Objective[p.Var]
	for _, player := range [2]string{m.Player1, m.Player2} {
		for _, n := range pl.neighbors[tb] {
			if pl.busy[player][n] {
				score -= pl.b.Weights.BackToBack
			}
		}
	}
	return score
}

func (pl *placer) set(mi, pi int, on bool) {
	p := pl.b.Placements[pi]
	m := pl.b.Matches[mi]
	tb := pl.b.Slots[p.Slot].TimeBlock
	pl.slotUsed[p.Slot] = on
	for _, player := range [2]string{m.Player1, m.Player2} {
		if pl.busy[player] == nil {
			pl.busy[player] = make(map[string]bool)
		}
		pl.busy[player][tb] = on
	}
	if on {
		pl.chosen[mi] = pi
	} else {
		pl.chosen[mi] = -1
	}
}

// neighbors maps each time block to the blocks directly before and after it
// on the same day.
func neighbors(blocks map[string]model.TimeBlock) map[string][]string {
	out := make(map[string][]string)
	for _, a := range blocks {
		for _, b := range blocks {
			if a.Precedes(b) {
				out[a.ID] = append(out[a.ID], b.ID)
				out[b.ID] = append(out[b.ID], a.ID)
			}
		}
	}
	return out
}
