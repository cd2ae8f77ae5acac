package roundrobin

import (
	"errors"
	"fmt"
)

// ErrDivisionMismatch is returned when a group mixes players of different divisions.
var ErrDivisionMismatch = errors.New("group mixes divisions")

// Match is an unordered pairing of two players of the same group.
type Match struct {
	ID       string `json:"match_id"`
	Group    string `json:"group_id"`
	Division string `json:"division_id"`
	Player1  string `json:"player1"`
	Player2  string `json:"player2"`
}

// Involves reports whether player takes part in the match.
func (m Match) Involves(player string) bool {
	return m.Player1 == player || m.Player2 == player
}

// GenerateMatches enumerates every pair of members of each group once, in
// member order. A group of k players yields k(k-1)/2 matches; a single-player
// group yields none.
func GenerateMatches(groups []Group) ([]Match, error) {
	var matches []Match
	for _, g := range groups {
		for _, p := range g.Players {
			if p.Division != g.Division {
				return nil, fmt.Errorf("%w: player %s of division %s in group %s", ErrDivisionMismatch, p.ID, p.Division, g.ID)
			}
		}
		n := 0
		for i, p1 := range g.Players {
			for _, p2 := range g.Players[i+1:] {
				n++
				matches = append(matches, Match{
					ID:       fmt.Sprintf("%s-%d", g.ID, n),
					Group:    g.ID,
					Division: g.Division,
					Player1:  p1.ID,
					Player2:  p2.ID,
				})
			}
		}
	}
	return matches, nil
}

// MatchesByPlayer indexes match positions by player id.
func MatchesByPlayer(matches []Match) map[string][]int {
	out := make(map[string][]int)
	for i, m := range matches {
		out[m.Player1] = append(out[m.Player1], i)
		out[m.Player2] = append(out[m.Player2], i)
	}
	return out
}
