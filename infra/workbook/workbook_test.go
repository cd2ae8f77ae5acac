package workbook

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/pkg/export"
)

func sheet(name string, headers []string, rows ...[]string) export.Dataset {
	d := export.Dataset{Name: name, Headers: headers}
	for _, r := range rows {
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(r) {
				m[h] = r[i]
			}
		}
		d.Rows = append(d.Rows, m)
	}
	return d
}

func baseSheets() []export.Dataset {
	return []export.Dataset{
		sheet("Time_Block_Ranking", []string{"Time_Block_ID", "Ranking", "Day"},
			[]string{"sat-9", "1", "sat"}, []string{"sat-10", "2", "sat"}, []string{"sun-9", "1", "sun"}),
		sheet("divisions", []string{"division_id", "group_size"}, []string{"A", "3"}, []string{"B", ""}),
		sheet("division_availability", []string{"division_id", "time_block_id"},
			[]string{"A", "sat-9"}, []string{"A", "sat-10"}, []string{"B", "sun-9"}),
		sheet("players", []string{"player_id", "name", "division_id", "ranking", "notes"},
			[]string{"p1", "Ana", "A", "1", "left handed"},
			[]string{"p2", "Ben", "A", "2"},
			[]string{"", "", "", ""},
			[]string{"p3", "", "B", "1"}),
		sheet("slots", []string{"court_id", "time_block_id", "is_dummy"},
			[]string{"c1", "sat-9", "no"}, []string{"c1", "sat-10", "YES"}, []string{"c2", "sun-9", ""}),
		sheet("day_portions", []string{"day_portion_id", "time_block_id"},
			[]string{"sat-morning", "sat-9"}, []string{"sat-morning", "sat-10"}, []string{"sun-morning", "sun-9"}),
		sheet("player_preferences", []string{"player_id", "day_portion_id", "preference"},
			[]string{"p1", "sat-morning", "1"}, []string{"p2", "sun-morning", "-1"}),
		sheet("player_demands", []string{"player_id", "time_block_id"}, []string{"p2", "sat-10"}),
	}
}

func open(t *testing.T, datasets ...export.Dataset) *Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, datasets...))
	r, err := OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestReadRoster(t *testing.T) {
	roster, err := open(t, baseSheets()...).Roster()
	require.NoError(t, err)
	require.NoError(t, roster.Validate())

	assert.Equal(t, []model.TimeBlock{
		{ID: "sat-9", Day: "sat", Rank: 1}, {ID: "sat-10", Day: "sat", Rank: 2}, {ID: "sun-9", Day: "sun", Rank: 1},
	}, roster.TimeBlocks)
	assert.Equal(t, []model.Division{
		{ID: "A", TimeBlocks: []string{"sat-9", "sat-10"}, GroupSize: 3},
		{ID: "B", TimeBlocks: []string{"sun-9"}},
	}, roster.Divisions)
	require.Len(t, roster.Players, 3)
	assert.Equal(t, model.Player{ID: "p1", Name: "Ana", Division: "A", Rank: 1}, roster.Players[0])
	assert.Equal(t, []string{"sat-10"}, roster.Players[1].Demands)
	assert.Equal(t, "p3", roster.Players[2].DisplayName())
	assert.Equal(t, []model.Slot{
		{ID: "c1-sat-9", Court: "c1", TimeBlock: "sat-9"},
		{ID: "c1-sat-10", Court: "c1", TimeBlock: "sat-10", Dummy: true},
		{ID: "c2-sun-9", Court: "c2", TimeBlock: "sun-9"},
	}, roster.Slots)
	assert.Equal(t, []model.DayPortion{
		{ID: "sat-morning", TimeBlocks: []string{"sat-9", "sat-10"}},
		{ID: "sun-morning", TimeBlocks: []string{"sun-9"}},
	}, roster.Portions)
	assert.Equal(t, []model.RawPreference{
		{Player: "p1", Portion: "sat-morning", Value: 1},
		{Player: "p2", Portion: "sun-morning", Value: -1},
	}, roster.Preferences)
}

func TestReadRosterPreferencesByTimeBlock(t *testing.T) {
	var sheets []export.Dataset
	for _, d := range baseSheets() {
		switch d.Name {
		case "day_portions", "player_demands":
			continue
		case "player_preferences":
			d = sheet("player_preferences", []string{"player_id", "time_block_id", "preference"}, []string{"p1", "sat-10", "1"})
		}
		sheets = append(sheets, d)
	}
	roster, err := open(t, sheets...).Roster()
	require.NoError(t, err)
	assert.Empty(t, roster.Portions)
	assert.Equal(t, []model.RawPreference{{Player: "p1", Portion: "sat-10", Value: 1}}, roster.Preferences)
	assert.Empty(t, roster.Players[1].Demands)
	require.NoError(t, roster.Validate())
}

func replace(sheets []export.Dataset, d export.Dataset) []export.Dataset {
	out := make([]export.Dataset, 0, len(sheets))
	for _, s := range sheets {
		if s.Name == d.Name {
			out = append(out, d)
			continue
		}
		out = append(out, s)
	}
	return out
}

func without(sheets []export.Dataset, name string) []export.Dataset {
	var out []export.Dataset
	for _, s := range sheets {
		if s.Name != name {
			out = append(out, s)
		}
	}
	return out
}

func TestReadRosterErrors(t *testing.T) {
	cases := map[string]struct {
		sheets []export.Dataset
		want   []string
	}{
		"missing column": {
			sheets: replace(baseSheets(), sheet("players", []string{"player_id", "division_id"}, []string{"p1", "A"})),
			want:   []string{"players", "ranking"},
		},
		"missing sheet": {
			sheets: without(baseSheets(), "slots"),
			want:   []string{"slots"},
		},
		"bad ranking": {
			sheets: replace(baseSheets(), sheet("players", []string{"player_id", "division_id", "ranking"}, []string{"p1", "A", "first"})),
			want:   []string{"row 2", "first"},
		},
		"bad ranking after blank row": {
			sheets: replace(baseSheets(), sheet("players", []string{"player_id", "division_id", "ranking"},
				[]string{"p1", "A", "1"}, []string{"", "", ""}, []string{"p2", "A", "second"})),
			want: []string{"row 4", "second"},
		},
		"unknown demand player after blank rows": {
			sheets: replace(baseSheets(), sheet("player_demands", []string{"player_id", "time_block_id"},
				[]string{"p1", "sat-9"}, []string{"", ""}, []string{"", ""}, []string{"p9", "sat-9"})),
			want: []string{"row 5", "p9"},
		},
		"bad dummy flag": {
			sheets: replace(baseSheets(), sheet("slots", []string{"court_id", "time_block_id", "is_dummy"}, []string{"c1", "sat-9", "maybe"})),
			want:   []string{"maybe"},
		},
		"empty id": {
			sheets: replace(baseSheets(), sheet("slots", []string{"court_id", "time_block_id"}, []string{"", "sat-9"})),
			want:   []string{"court_id"},
		},
		"unknown demand player": {
			sheets: replace(baseSheets(), sheet("player_demands", []string{"player_id", "time_block_id"}, []string{"p9", "sat-9"})),
			want:   []string{"p9"},
		},
		"preference without portion column": {
			sheets: replace(baseSheets(), sheet("player_preferences", []string{"player_id", "preference"}, []string{"p1", "1"})),
			want:   []string{"player_preferences"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := open(t, tc.sheets...).Roster()
			require.ErrorIs(t, err, model.ErrInvalidInput)
			for _, w := range tc.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestReadSurvey(t *testing.T) {
	r := open(t, sheet("raw_preferences", []string{"player_id", "name", "Saturday morning", "Sunday morning"},
		[]string{"p1", "Ana", "Yes", "no"},
		[]string{"p2", "Ben", "neutral"},
	))
	rows, err := r.Survey()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0].Player)
	assert.Equal(t, map[string]string{"name": "Ana", "Saturday morning": "Yes", "Sunday morning": "no"}, rows[0].Answers)
	assert.Equal(t, "", rows[1].Answers["Sunday morning"])

	_, err = open(t, baseSheets()...).Survey()
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, Write(path,
		sheet("groups", []string{"group_id", "seed"}, []string{"A-1", "yes"}),
		sheet("diagnostics", []string{"key", "value"}, []string{"matches", "6"}, []string{"player", "007"}),
	))
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"groups", "diagnostics"}, f.GetSheetList())
	rows, err := f.GetRows("diagnostics")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"key", "value"}, {"matches", "6"}, {"player", "007"}}, rows)
	typ, err := f.GetCellType("diagnostics", "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ)

	assert.Error(t, Write(path))
	assert.Error(t, Write(path, export.Dataset{Headers: []string{"x"}}))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}
