package preferences

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/courtsched/core/model"
)

var (
	testPlayers  = []model.Player{{ID: "ana"}, {ID: "bea"}}
	testPortions = []model.DayPortion{
		{ID: "morning", TimeBlocks: []string{"t1", "t2"}},
		{ID: "afternoon", TimeBlocks: []string{"t3"}},
	}
	testSlots = []model.Slot{
		{ID: "c1-t1", Court: "c1", TimeBlock: "t1"},
		{ID: "c2-t1", Court: "c2", TimeBlock: "t1"},
		{ID: "c1-t2", Court: "c1", TimeBlock: "t2"},
		{ID: "c1-t3", Court: "c1", TimeBlock: "t3"},
	}
)

func TestExpandPropagatesPortionValues(t *testing.T) {
	prefs := []model.RawPreference{
		{Player: "ana", Portion: "morning", Value: 1},
		{Player: "ana", Portion: "afternoon", Value: -1},
	}
	tbl, err := Expand(testPlayers, testSlots, testPortions, prefs)
	require.NoError(t, err)

	for _, sid := range []string{"c1-t1", "c2-t1", "c1-t2"} {
		assert.Equal(t, 1, tbl.Value("ana", sid), sid)
	}
	assert.Equal(t, -1, tbl.Value("ana", "c1-t3"))
	for _, s := range testSlots {
		assert.Equal(t, 0, tbl.Value("bea", s.ID), "missing preferences are neutral")
	}
	np, ns := tbl.Len()
	assert.Equal(t, 2, np)
	assert.Equal(t, 4, ns)
}

func TestExpandUncoveredTimeBlock(t *testing.T) {
	slots := append([]model.Slot{}, testSlots...)
	slots = append(slots, model.Slot{ID: "c1-t4", Court: "c1", TimeBlock: "t4"})
	_, err := Expand(testPlayers, slots, testPortions, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "c1-t4")
}

func TestExpandUnknownPlayer(t *testing.T) {
	_, err := Expand(testPlayers, testSlots, testPortions, []model.RawPreference{{Player: "zoe", Portion: "morning", Value: 1}})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestExpandAggregateRoundTrip(t *testing.T) {
	raw := []model.RawPreference{
		{Player: "ana", Portion: "morning", Value: 1},
		{Player: "ana", Portion: "afternoon", Value: -1},
		{Player: "bea", Portion: "morning", Value: -1},
		{Player: "bea", Portion: "afternoon", Value: 0},
	}
	tbl, err := Expand(testPlayers, testSlots, testPortions, raw)
	require.NoError(t, err)
	back, err := Aggregate(tbl, testPlayers, testSlots, testPortions)
	require.NoError(t, err)
	assert.ElementsMatch(t, raw, back)
}

func TestAggregateDetectsInconsistentTable(t *testing.T) {
	tbl, err := Expand(testPlayers, testSlots, testPortions, nil)
	require.NoError(t, err)
	tbl.values[0][0] = 1
	_, err = Aggregate(tbl, testPlayers, testSlots, testPortions)
	assert.Error(t, err)
}
