// Package workbook reads the club workbook into a roster and writes scheduling
// results back as sheets.
package workbook

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/preferences"
)

// Input sheet names.
const (
	SheetPlayers      = "players"
	SheetDivisions    = "divisions"
	SheetAvailability = "division_availability"
	SheetSlots        = "slots"
	SheetTimeBlocks   = "time_block_ranking"
	SheetDayPortions  = "day_portions"
	SheetPreferences  = "player_preferences"
	SheetDemands      = "player_demands"
	SheetSurvey       = "raw_preferences"
)

// Reader parses workbook sheets into domain records.
type Reader struct {
	f      *excelize.File
	sheets map[string]string
}

// Open opens the workbook at path.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return newReader(f), nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return newReader(f), nil
}

func newReader(f *excelize.File) *Reader {
	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheets[normalize(name)] = name
	}
	return &Reader{f: f, sheets: sheets}
}

// Close releases the workbook.
func (r *Reader) Close() error { return r.f.Close() }

// table is one sheet with its header row indexed by normalized column name.
type table struct {
	sheet string
	cols  map[string]int
	rows  [][]string
	// lines holds the spreadsheet row number of each entry in rows.
	lines []int
}

// line returns the 1-based spreadsheet row of the n-th data row.
func (t *table) line(n int) int { return t.lines[n] }

// table loads a sheet. A missing optional sheet yields nil without error.
func (r *Reader) table(sheet string, optional bool, required ...string) (*table, error) {
	name, ok := r.sheets[sheet]
	if !ok {
		if optional {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: workbook has no %s sheet", model.ErrInvalidInput, sheet)
	}
	rows, err := r.f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	t := &table{sheet: sheet, cols: make(map[string]int)}
	if len(rows) > 0 {
		for i, h := range rows[0] {
			if h = normalize(h); h != "" {
				if _, dup := t.cols[h]; !dup {
					t.cols[h] = i
				}
			}
		}
		for i, row := range rows[1:] {
			if !blank(row) {
				t.rows = append(t.rows, row)
				t.lines = append(t.lines, i+2)
			}
		}
	}
	for _, c := range required {
		if !t.has(c) {
			return nil, fmt.Errorf("%w: sheet %s is missing column %s", model.ErrInvalidInput, sheet, c)
		}
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.cols[col]
	return ok
}

func (t *table) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// text returns a required cell value.
func (t *table) text(n int, row []string, col string) (string, error) {
	v := t.get(row, col)
	if v == "" {
		return "", fmt.Errorf("%w: sheet %s row %d: empty %s", model.ErrInvalidInput, t.sheet, t.line(n), col)
	}
	return v, nil
}

// integer parses a whole number, accepting spreadsheet renderings such as "3.0".
func (t *table) integer(n int, row []string, col string) (int, error) {
	v, err := t.text(n, row, col)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: sheet %s row %d: %s %q is not a whole number", model.ErrInvalidInput, t.sheet, t.line(n), col, v)
	}
	return int(f), nil
}

// Roster reads every scheduling sheet and assembles the roster. Records are
// returned in sheet order; cross references are checked by Roster.Validate.
//
//gocyclo:ignore
func (r *Reader) Roster() (*model.Roster, error) {
	roster := &model.Roster{}

	blocks, err := r.table(SheetTimeBlocks, false, "time_block_id", "ranking")
	if err != nil {
		return nil, err
	}
	for n, row := range blocks.rows {
		id, err := blocks.text(n, row, "time_block_id")
		if err != nil {
			return nil, err
		}
		rank, err := blocks.integer(n, row, "ranking")
		if err != nil {
			return nil, err
		}
		roster.TimeBlocks = append(roster.TimeBlocks, model.TimeBlock{ID: id, Day: blocks.get(row, "day"), Rank: rank})
	}

	divisions, err := r.readDivisions()
	if err != nil {
		return nil, err
	}

	players, err := r.table(SheetPlayers, false, "player_id", "division_id", "ranking")
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	for n, row := range players.rows {
		id, err := players.text(n, row, "player_id")
		if err != nil {
			return nil, err
		}
		div, err := players.text(n, row, "division_id")
		if err != nil {
			return nil, err
		}
		rank, err := players.integer(n, row, "ranking")
		if err != nil {
			return nil, err
		}
		index[id] = len(roster.Players)
		roster.Players = append(roster.Players, model.Player{ID: id, Name: players.get(row, "name"), Division: div, Rank: rank})
		divisions.add(div)
	}
	roster.Divisions = divisions.list

	slots, err := r.table(SheetSlots, false, "court_id", "time_block_id")
	if err != nil {
		return nil, err
	}
	for n, row := range slots.rows {
		court, err := slots.text(n, row, "court_id")
		if err != nil {
			return nil, err
		}
		tb, err := slots.text(n, row, "time_block_id")
		if err != nil {
			return nil, err
		}
		dummy, err := parseFlag(slots.get(row, "is_dummy"))
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %s row %d: %v", model.ErrInvalidInput, SheetSlots, slots.line(n), err)
		}
		roster.Slots = append(roster.Slots, model.Slot{ID: model.SlotID(court, tb), Court: court, TimeBlock: tb, Dummy: dummy})
	}

	if roster.Portions, err = r.readPortions(); err != nil {
		return nil, err
	}
	if roster.Preferences, err = r.readPreferences(); err != nil {
		return nil, err
	}

	demands, err := r.table(SheetDemands, true, "player_id", "time_block_id")
	if err != nil {
		return nil, err
	}
	if demands != nil {
		for n, row := range demands.rows {
			id, err := demands.text(n, row, "player_id")
			if err != nil {
				return nil, err
			}
			tb, err := demands.text(n, row, "time_block_id")
			if err != nil {
				return nil, err
			}
			i, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("%w: sheet %s row %d: unknown player %s", model.ErrInvalidInput, SheetDemands, demands.line(n), id)
			}
			roster.Players[i].Demands = append(roster.Players[i].Demands, tb)
		}
	}
	return roster, nil
}

// divisionSet collects divisions in first-seen order.
type divisionSet struct {
	list  []model.Division
	index map[string]int
}

func (s *divisionSet) add(id string) int {
	if i, ok := s.index[id]; ok {
		return i
	}
	s.index[id] = len(s.list)
	s.list = append(s.list, model.Division{ID: id})
	return s.index[id]
}

func (r *Reader) readDivisions() (*divisionSet, error) {
	set := &divisionSet{index: make(map[string]int)}
	divs, err := r.table(SheetDivisions, true, "division_id")
	if err != nil {
		return nil, err
	}
	if divs != nil {
		for n, row := range divs.rows {
			id, err := divs.text(n, row, "division_id")
			if err != nil {
				return nil, err
			}
			i := set.add(id)
			if divs.get(row, "group_size") != "" {
				size, err := divs.integer(n, row, "group_size")
				if err != nil {
					return nil, err
				}
				set.list[i].GroupSize = size
			}
		}
	}
	avail, err := r.table(SheetAvailability, false, "division_id", "time_block_id")
	if err != nil {
		return nil, err
	}
	for n, row := range avail.rows {
		id, err := avail.text(n, row, "division_id")
		if err != nil {
			return nil, err
		}
		tb, err := avail.text(n, row, "time_block_id")
		if err != nil {
			return nil, err
		}
		i := set.add(id)
		set.list[i].TimeBlocks = append(set.list[i].TimeBlocks, tb)
	}
	return set, nil
}

func (r *Reader) readPortions() ([]model.DayPortion, error) {
	t, err := r.table(SheetDayPortions, true, "day_portion_id", "time_block_id")
	if err != nil || t == nil {
		return nil, err
	}
	var out []model.DayPortion
	index := make(map[string]int)
	for n, row := range t.rows {
		id, err := t.text(n, row, "day_portion_id")
		if err != nil {
			return nil, err
		}
		tb, err := t.text(n, row, "time_block_id")
		if err != nil {
			return nil, err
		}
		i, ok := index[id]
		if !ok {
			i = len(out)
			index[id] = i
			out = append(out, model.DayPortion{ID: id})
		}
		out[i].TimeBlocks = append(out[i].TimeBlocks, tb)
	}
	return out, nil
}

// readPreferences accepts either a day_portion_id or a time_block_id column;
// without day portions every time block is its own portion.
func (r *Reader) readPreferences() ([]model.RawPreference, error) {
	t, err := r.table(SheetPreferences, true, "player_id", "preference")
	if err != nil || t == nil {
		return nil, err
	}
	col := "day_portion_id"
	if !t.has(col) {
		col = "time_block_id"
		if !t.has(col) {
			return nil, fmt.Errorf("%w: sheet %s needs a day_portion_id or time_block_id column", model.ErrInvalidInput, SheetPreferences)
		}
	}
	var out []model.RawPreference
	for n, row := range t.rows {
		id, err := t.text(n, row, "player_id")
		if err != nil {
			return nil, err
		}
		portion, err := t.text(n, row, col)
		if err != nil {
			return nil, err
		}
		v, err := t.integer(n, row, "preference")
		if err != nil {
			return nil, err
		}
		out = append(out, model.RawPreference{Player: id, Portion: portion, Value: v})
	}
	return out, nil
}

// Survey reads the raw_preferences sheet: one row per player, one column per
// survey question. Columns keep their original header text.
func (r *Reader) Survey() ([]preferences.SurveyRow, error) {
	t, err := r.table(SheetSurvey, false, "player_id")
	if err != nil {
		return nil, err
	}
	headers := make(map[int]string, len(t.cols))
	rows, err := r.f.GetRows(r.sheets[SheetSurvey])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", SheetSurvey, err)
	}
	for i, h := range rows[0] {
		if strings.TrimSpace(h) != "" {
			headers[i] = strings.TrimSpace(h)
		}
	}
	idCol := t.cols["player_id"]
	var out []preferences.SurveyRow
	for n, row := range t.rows {
		id, err := t.text(n, row, "player_id")
		if err != nil {
			return nil, err
		}
		sr := preferences.SurveyRow{Player: id, Answers: make(map[string]string)}
		for i, h := range headers {
			if i == idCol {
				continue
			}
			v := ""
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			sr.Answers[h] = v
		}
		out = append(out, sr)
	}
	return out, nil
}

func parseFlag(v string) (bool, error) {
	switch normalize(v) {
	case "", "no", "false", "0", "n":
		return false, nil
	case "yes", "true", "1", "y":
		return true, nil
	default:
		return false, fmt.Errorf("is_dummy %q is not yes/no", v)
	}
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
