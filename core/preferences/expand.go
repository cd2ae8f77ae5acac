package preferences

import (
	"fmt"

	"github.com/kilianp07/courtsched/core/model"
)

// Table is the dense player × slot preference table. It is read-only once built.
type Table struct {
	players map[string]int
	slots   map[string]int
	values  [][]int
}

// Value returns the expanded preference of player for slot. Unknown players or
// slots are neutral.
func (t Table) Value(player, slot string) int {
	p, ok := t.players[player]
	if !ok {
		return 0
	}
	s, ok := t.slots[slot]
	if !ok {
		return 0
	}
	return t.values[p][s]
}

// Len returns the number of players and slots covered by the table.
func (t Table) Len() (players, slots int) { return len(t.players), len(t.slots) }

// Expand propagates each player's day-portion preference to every slot whose
// time block belongs to that portion. A slot whose time block is not covered by
// any day portion is an input error.
func Expand(players []model.Player, slots []model.Slot, portions []model.DayPortion, prefs []model.RawPreference) (Table, error) {
	portionOf := make(map[string]string)
	for _, dp := range portions {
		for _, tb := range dp.TimeBlocks {
			portionOf[tb] = dp.ID
		}
	}

	t := Table{
		players: make(map[string]int, len(players)),
		slots:   make(map[string]int, len(slots)),
		values:  make([][]int, len(players)),
	}
	slotPortion := make([]string, len(slots))
	for i, s := range slots {
		dp, ok := portionOf[s.TimeBlock]
		if !ok {
			return Table{}, fmt.Errorf("%w: slot %s: time block %s is not part of any day portion", model.ErrInvalidInput, s.ID, s.TimeBlock)
		}
		t.slots[s.ID] = i
		slotPortion[i] = dp
	}
	for i, p := range players {
		t.players[p.ID] = i
		t.values[i] = make([]int, len(slots))
	}

	byPlayer := make(map[string]map[string]int)
	for _, pref := range prefs {
		if _, ok := t.players[pref.Player]; !ok {
			return Table{}, fmt.Errorf("%w: preference for unknown player %s", model.ErrInvalidInput, pref.Player)
		}
		if byPlayer[pref.Player] == nil {
			byPlayer[pref.Player] = make(map[string]int)
		}
		byPlayer[pref.Player][pref.Portion] = pref.Value
	}

	for id, row := range t.players {
		stated := byPlayer[id]
		if stated == nil {
			continue
		}
		for s, dp := range slotPortion {
			t.values[row][s] = stated[dp]
		}
	}
	return t, nil
}

// Aggregate folds an expanded table back onto day portions. Every portion that
// contains at least one slot yields one preference per player. Slots of the
// same portion that disagree indicate a table not produced by Expand.
func Aggregate(t Table, players []model.Player, slots []model.Slot, portions []model.DayPortion) ([]model.RawPreference, error) {
	portionOf := make(map[string]string)
	for _, dp := range portions {
		for _, tb := range dp.TimeBlocks {
			portionOf[tb] = dp.ID
		}
	}
	slotsByPortion := make(map[string][]string)
	for _, s := range slots {
		if dp, ok := portionOf[s.TimeBlock]; ok {
			slotsByPortion[dp] = append(slotsByPortion[dp], s.ID)
		}
	}

	var out []model.RawPreference
	for _, p := range players {
		for _, dp := range portions {
			ids := slotsByPortion[dp.ID]
			if len(ids) == 0 {
				continue
			}
			v := t.Value(p.ID, ids[0])
			for _, sid := range ids[1:] {
				if t.Value(p.ID, sid) != v {
					return nil, fmt.Errorf("player %s: slots of day portion %s carry different preferences", p.ID, dp.ID)
				}
			}
			out = append(out, model.RawPreference{Player: p.ID, Portion: dp.ID, Value: v})
		}
	}
	return out, nil
}
