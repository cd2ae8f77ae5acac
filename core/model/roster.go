package model

import "sort"

// Player is a club member entered in one division.
type Player struct {
	ID       string `json:"player_id" yaml:"player_id" validate:"required"`
	Name     string `json:"name" yaml:"name"`
	Division string `json:"division_id" yaml:"division_id" validate:"required"`
	// Rank orders players for seeding; lower is stronger.
	Rank int `json:"ranking" yaml:"ranking" validate:"gte=0"`
	// Demands restricts the player to these time blocks when non-empty.
	Demands []string `json:"demands,omitempty" yaml:"demands,omitempty" validate:"dive,required"`
}

// HasDemands reports whether the player is restricted to a set of time blocks.
func (p Player) HasDemands() bool { return len(p.Demands) > 0 }

// DisplayName returns the name or the id when no name is set.
func (p Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Division is a league bracket. Players only meet players of their own division.
type Division struct {
	ID string `json:"division_id" yaml:"division_id" validate:"required"`
	// TimeBlocks lists the blocks in which matches of this division may be played.
	TimeBlocks []string `json:"time_blocks" yaml:"time_blocks" validate:"dive,required"`
	// GroupSize is the maximum number of players per group. Zero means the
	// scheduler default.
	GroupSize int `json:"group_size,omitempty" yaml:"group_size,omitempty" validate:"gte=0"`
}

// TimeBlock is a period shared by all courts.
type TimeBlock struct {
	ID  string `json:"time_block_id" yaml:"time_block_id" validate:"required"`
	Day string `json:"day,omitempty" yaml:"day,omitempty"`
	// Rank increases by one between consecutive blocks of the same day.
	Rank int `json:"ranking" yaml:"ranking"`
}

// Precedes reports whether next directly follows b on the same day.
func (b TimeBlock) Precedes(next TimeBlock) bool {
	return b.Day == next.Day && next.Rank-b.Rank == 1
}

// DayPortion is a coarse period, such as a morning, made of one or more time blocks.
type DayPortion struct {
	ID         string   `json:"day_portion_id" yaml:"day_portion_id" validate:"required"`
	TimeBlocks []string `json:"time_blocks" yaml:"time_blocks" validate:"min=1,dive,required"`
}

// Slot is a bookable (court, time block) unit. Dummy slots represent
// overbooking capacity and are penalised when used.
type Slot struct {
	ID        string `json:"slot_id" yaml:"slot_id" validate:"required"`
	Court     string `json:"court_id" yaml:"court_id" validate:"required"`
	TimeBlock string `json:"time_block_id" yaml:"time_block_id" validate:"required"`
	Dummy     bool   `json:"is_dummy" yaml:"is_dummy"`
}

// SlotID builds the identifier used for a court and time block.
func SlotID(court, timeBlock string) string { return court + "-" + timeBlock }

// RawPreference is a player's stated preference for a day portion.
type RawPreference struct {
	Player  string `json:"player_id" yaml:"player_id" validate:"required"`
	Portion string `json:"day_portion_id" yaml:"day_portion_id" validate:"required"`
	Value   int    `json:"preference" yaml:"preference" validate:"min=-1,max=1"`
}

// Roster is the normalized scheduling input. It is built once by a reader and
// not modified afterwards.
type Roster struct {
	Players     []Player        `json:"players" yaml:"players" validate:"dive"`
	Divisions   []Division      `json:"divisions" yaml:"divisions" validate:"dive"`
	TimeBlocks  []TimeBlock     `json:"time_blocks" yaml:"time_blocks" validate:"dive"`
	Portions    []DayPortion    `json:"day_portions" yaml:"day_portions" validate:"dive"`
	Slots       []Slot          `json:"slots" yaml:"slots" validate:"dive"`
	Preferences []RawPreference `json:"preferences" yaml:"preferences" validate:"dive"`
}

// PlayersByDivision groups players by division id.
func (r *Roster) PlayersByDivision() map[string][]Player {
	out := make(map[string][]Player)
	for _, p := range r.Players {
		out[p.Division] = append(out[p.Division], p)
	}
	return out
}

// PlayerIndex maps player ids to players.
func (r *Roster) PlayerIndex() map[string]Player {
	out := make(map[string]Player, len(r.Players))
	for _, p := range r.Players {
		out[p.ID] = p
	}
	return out
}

// TimeBlockIndex maps time block ids to time blocks.
func (r *Roster) TimeBlockIndex() map[string]TimeBlock {
	out := make(map[string]TimeBlock, len(r.TimeBlocks))
	for _, b := range r.TimeBlocks {
		out[b.ID] = b
	}
	return out
}

// DivisionIndex maps division ids to divisions.
func (r *Roster) DivisionIndex() map[string]Division {
	out := make(map[string]Division, len(r.Divisions))
	for _, d := range r.Divisions {
		out[d.ID] = d
	}
	return out
}

// SlotIndex maps slot ids to slots.
func (r *Roster) SlotIndex() map[string]Slot {
	out := make(map[string]Slot, len(r.Slots))
	for _, s := range r.Slots {
		out[s.ID] = s
	}
	return out
}

// OrderedTimeBlocks returns the time blocks sorted by day then rank.
func (r *Roster) OrderedTimeBlocks() []TimeBlock {
	blocks := append([]TimeBlock(nil), r.TimeBlocks...)
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Day != blocks[j].Day {
			return blocks[i].Day < blocks[j].Day
		}
		return blocks[i].Rank < blocks[j].Rank
	})
	return blocks
}

// EffectivePortions returns the day portions, or one portion per time block
// named after it when none are defined.
func (r *Roster) EffectivePortions() []DayPortion {
	if len(r.Portions) > 0 {
		return r.Portions
	}
	out := make([]DayPortion, 0, len(r.TimeBlocks))
	for _, b := range r.OrderedTimeBlocks() {
		out = append(out, DayPortion{ID: b.ID, TimeBlocks: []string{b.ID}})
	}
	return out
}
