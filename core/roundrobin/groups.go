package roundrobin

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/kilianp07/courtsched/core/model"
)

// Group is a set of players of one division who all play each other once.
// Players[0] is the group seed.
type Group struct {
	ID       string         `json:"group_id"`
	Division string         `json:"division_id"`
	Players  []model.Player `json:"players"`
}

// Seed returns the strongest player of the group.
func (g Group) Seed() model.Player { return g.Players[0] }

// GroupBuilder partitions divisions into round-robin groups.
type GroupBuilder struct {
	// DefaultSize applies to divisions without their own group size.
	DefaultSize int
	// Seed drives tie-breaking between equally sized groups. The same seed
	// and input always produce the same groups.
	Seed int64
}

// Build returns the groups of every division, ordered by division id and then
// by group number. The g strongest players of a division seed one group each;
// remaining players join, strongest first, the smallest group, with ties
// broken by the seeded random source.
func (b GroupBuilder) Build(players []model.Player, divisions []model.Division) ([]Group, error) {
	sizes := make(map[string]int, len(divisions))
	for _, d := range divisions {
		size := d.GroupSize
		if size == 0 {
			size = b.DefaultSize
		}
		if size <= 1 {
			return nil, fmt.Errorf("%w: division %s: group size %d, need at least 2", model.ErrInvalidConfig, d.ID, size)
		}
		sizes[d.ID] = size
	}

	byDivision := make(map[string][]model.Player)
	for _, p := range players {
		if _, ok := sizes[p.Division]; !ok {
			return nil, fmt.Errorf("%w: player %s references unknown division %s", model.ErrInvalidInput, p.ID, p.Division)
		}
		byDivision[p.Division] = append(byDivision[p.Division], p)
	}

	ids := make([]string, 0, len(sizes))
	for id := range sizes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rng := rand.New(rand.NewSource(b.Seed))
	var groups []Group
	for _, id := range ids {
		groups = append(groups, divisionGroups(id, byDivision[id], sizes[id], rng)...)
	}
	return groups, nil
}

func divisionGroups(division string, players []model.Player, size int, rng *rand.Rand) []Group {
	if len(players) == 0 {
		return nil
	}
	sorted := append([]model.Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Rank != sorted[j].Rank {
			return sorted[i].Rank < sorted[j].Rank
		}
		return sorted[i].ID < sorted[j].ID
	})

	n := (len(sorted) + size - 1) / size
	groups := make([]Group, n)
	for i := range groups {
		groups[i] = Group{
			ID:       fmt.Sprintf("%s-%d", division, i+1),
			Division: division,
			Players:  []model.Player{sorted[i]},
		}
	}

	candidates := make([]int, 0, n)
	for _, p := range sorted[n:] {
		candidates = candidates[:0]
		fewest := -1
		for i, g := range groups {
			switch {
			case fewest == -1 || len(g.Players) < fewest:
				fewest = len(g.Players)
				candidates = append(candidates[:0], i)
			case len(g.Players) == fewest:
				candidates = append(candidates, i)
			}
		}
		pick := candidates[0]
		if len(candidates) > 1 {
			pick = candidates[rng.Intn(len(candidates))]
		}
		groups[pick].Players = append(groups[pick].Players, p)
	}
	return groups
}
