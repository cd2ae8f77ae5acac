package roundrobin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/courtsched/core/model"
)

func TestGenerateMatchesCounts(t *testing.T) {
	for k := 1; k <= 6; k++ {
		g := Group{ID: "A-1", Division: "A", Players: players("A", k)}
		matches, err := GenerateMatches([]Group{g})
		require.NoError(t, err)
		assert.Len(t, matches, k*(k-1)/2, "group of %d", k)

		pairs := make(map[[2]string]bool)
		for _, m := range matches {
			assert.NotEqual(t, m.Player1, m.Player2)
			assert.Equal(t, "A", m.Division)
			key := [2]string{min(m.Player1, m.Player2), max(m.Player1, m.Player2)}
			assert.False(t, pairs[key], "pair %v repeated", key)
			pairs[key] = true
		}
	}
}

func TestSevenPlayersGiveNineMatches(t *testing.T) {
	groups, err := GroupBuilder{DefaultSize: 4, Seed: 5}.Build(players("A", 7), []model.Division{{ID: "A"}})
	require.NoError(t, err)
	matches, err := GenerateMatches(groups)
	require.NoError(t, err)
	assert.Len(t, matches, 9)
}

func TestGenerateMatchesIDs(t *testing.T) {
	g := Group{ID: "A-2", Division: "A", Players: players("A", 3)}
	matches, err := GenerateMatches([]Group{g})
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "A-2-1", matches[0].ID)
	assert.Equal(t, "A-2-3", matches[2].ID)
	assert.Equal(t, "A-2", matches[0].Group)
	assert.True(t, matches[0].Involves("A01"))
	assert.False(t, matches[2].Involves("A01"))
}

func TestGenerateMatchesDivisionMismatch(t *testing.T) {
	g := Group{ID: "A-1", Division: "A", Players: []model.Player{{ID: "x", Division: "A"}, {ID: "y", Division: "B"}}}
	_, err := GenerateMatches([]Group{g})
	assert.ErrorIs(t, err, ErrDivisionMismatch)
}

func TestMatchesByPlayer(t *testing.T) {
	g := Group{ID: "A-1", Division: "A", Players: players("A", 4)}
	matches, err := GenerateMatches([]Group{g})
	require.NoError(t, err)
	idx := MatchesByPlayer(matches)
	for _, p := range g.Players {
		assert.Len(t, idx[p.ID], 3)
	}
}
