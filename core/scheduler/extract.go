package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/roundrobin"
	"github.com/kilianp07/courtsched/core/solver"
)

// Assignment places a match on a slot.
type Assignment struct {
	Match     roundrobin.Match `json:"match"`
	Slot      model.Slot       `json:"slot"`
	TimeBlock model.TimeBlock  `json:"time_block"`
}

// BackToBack is a player playing in two consecutive time blocks.
type BackToBack struct {
	Player string `json:"player_id"`
	From   string `json:"from_time_block"`
	To     string `json:"to_time_block"`
}

// Diagnostics summarise a scheduling run.
type Diagnostics struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
	// Objective is the value reported with the solution.
	Objective float64 `json:"objective"`
	// Preference, DummyPenalty and BackToBackPenalty are recomputed from the
	// assignment. Objective equals Preference - DummyPenalty - BackToBackPenalty.
	Preference        float64       `json:"preference"`
	DummyPenalty      float64       `json:"dummy_penalty"`
	BackToBackPenalty float64       `json:"back_to_back_penalty"`
	Matches           int           `json:"matches"`
	DummySlotsUsed    int           `json:"dummy_slots_used"`
	UnusedDummySlots  []string      `json:"unused_dummy_slots"`
	BackToBack        []BackToBack  `json:"back_to_back"`
	Variables         int           `json:"variables"`
	Constraints       int           `json:"constraints"`
	Nodes             int           `json:"nodes"`
	Elapsed           time.Duration `json:"elapsed"`
}

// Schedule is a complete assignment of every match.
type Schedule struct {
	Assignments []Assignment `json:"assignments"`
	Diagnostics Diagnostics  `json:"diagnostics"`
}

// Extract maps a solution back onto matches and slots. Only optimal or
// feasible solutions yield a schedule; every other status is returned as an
// error and no partial schedule is produced.
//
//gocyclo:ignore
func Extract(b *Build, sol solver.Solution) (*Schedule, error) {
	switch sol.Status {
	case solver.StatusOptimal, solver.StatusFeasible:
	case solver.StatusInfeasible:
		return nil, ErrInfeasible
	case solver.StatusTimeout:
		return nil, ErrTimeout
	case solver.StatusError:
		return nil, fmt.Errorf("%w: %v", ErrSolver, sol.Err)
	default:
		return nil, fmt.Errorf("%w: unexpected status %s", ErrSolver, sol.Status)
	}
	if len(sol.Values) != len(b.Model.Variables) {
		return nil, fmt.Errorf("%w: %d values for %d variables", ErrInconsistent, len(sol.Values), len(b.Model.Variables))
	}

	slotOf := make([]int, len(b.Matches))
	for mi, m := range b.Matches {
		slotOf[mi] = -1
		for _, pi := range b.ByMatch[mi] {
			p := b.Placements[pi]
			if sol.Values[p.Var] < 0.5 {
				continue
			}
			if slotOf[mi] >= 0 {
				return nil, fmt.Errorf("%w: match %s assigned to slots %s and %s", ErrInconsistent, m.ID, b.Slots[slotOf[mi]].ID, b.Slots[p.Slot].ID)
			}
			slotOf[mi] = p.Slot
		}
		if slotOf[mi] < 0 {
			return nil, fmt.Errorf("%w: match %s left unassigned", ErrInconsistent, m.ID)
		}
	}

	s := &Schedule{Assignments: make([]Assignment, 0, len(b.Matches))}
	d := &s.Diagnostics
	d.Status = sol.Status.String()
	d.Objective = sol.Objective
	d.Matches = len(b.Matches)
	d.Nodes = sol.Nodes
	d.Variables = len(b.Model.Variables)
	d.Constraints = len(b.Model.Constraints)

	hosted := make(map[int]string)
	played := make(map[string]map[string]string)
	for mi, m := range b.Matches {
		slot := b.Slots[slotOf[mi]]
		if other, taken := hosted[slotOf[mi]]; taken {
			return nil, fmt.Errorf("%w: slot %s hosts matches %s and %s", ErrInconsistent, slot.ID, other, m.ID)
		}
		hosted[slotOf[mi]] = m.ID
		for _, p := range [2]string{m.Player1, m.Player2} {
			if played[p] == nil {
				played[p] = make(map[string]string)
			}
			if other, busy := played[p][slot.TimeBlock]; busy {
				return nil, fmt.Errorf("%w: player %s plays matches %s and %s in time block %s", ErrInconsistent, p, other, m.ID, slot.TimeBlock)
			}
			played[p][slot.TimeBlock] = m.ID
			d.Preference += float64(b.Prefs.Value(p, slot.ID))
		}
		if slot.Dummy {
			d.DummySlotsUsed++
		}
		s.Assignments = append(s.Assignments, Assignment{Match: m, Slot: slot, TimeBlock: b.Blocks[slot.TimeBlock]})
	}
	for si, slot := range b.Slots {
		if _, used := hosted[si]; slot.Dummy && !used {
			d.UnusedDummySlots = append(d.UnusedDummySlots, slot.ID)
		}
	}

	d.BackToBack = backToBack(played, b.Blocks)
	d.DummyPenalty = b.Weights.Dummy * float64(d.DummySlotsUsed)
	d.BackToBackPenalty = b.Weights.BackToBack * float64(len(d.BackToBack))
	return s, nil
}

// backToBack lists, per player in id order, every pair of consecutive time
// blocks in which the player has a match.
func backToBack(played map[string]map[string]string, blocks map[string]model.TimeBlock) []BackToBack {
	players := make([]string, 0, len(played))
	for p := range played {
		players = append(players, p)
	}
	sort.Strings(players)

	var out []BackToBack
	for _, p := range players {
		used := make([]model.TimeBlock, 0, len(played[p]))
		for tb := range played[p] {
			used = append(used, blocks[tb])
		}
		sort.Slice(used, func(i, j int) bool {
			if used[i].Day != used[j].Day {
				return used[i].Day < used[j].Day
			}
			return used[i].Rank < used[j].Rank
		})
		for i := 1; i < len(used); i++ {
			if used[i-1].Precedes(used[i]) {
				out = append(out, BackToBack{Player: p, From: used[i-1].ID, To: used[i].ID})
			}
		}
	}
	return out
}
