// Package export renders scheduling results as tabular datasets and writes
// them as CSV, JSON, PDF or a terminal table.
package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/preferences"
	"github.com/kilianp07/courtsched/core/scheduler"
)

// Dataset defines tabular export content.
type Dataset struct {
	Name    string
	Headers []string
	Rows    []map[string]string
}

// Records returns the rows as string slices ordered like Headers.
func (d Dataset) Records() [][]string {
	out := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		rec := make([]string, len(d.Headers))
		for i, h := range d.Headers {
			rec[i] = row[h]
		}
		out = append(out, rec)
	}
	return out
}

// Sheet names used for the result datasets.
const (
	SheetGroups             = "groups"
	SheetMatchesByGroup     = "matches_by_group"
	SheetMatchesByTimeBlock = "matches_by_time_block"
	SheetDiagnostics        = "diagnostics"
	SheetPreferences        = "parsed_preferences"
)

var matchHeaders = []string{
	"division_id", "group_id", "match_id", "player1", "player2", "court_id",
	"time_block_id", "time_block_ranking", "preferred_slot", "dummy_slot",
}

// Groups lists every group member, seed first.
func Groups(res *scheduler.Result) Dataset {
	d := Dataset{Name: SheetGroups, Headers: []string{"division_id", "group_id", "player_id", "player", "seed"}}
	for _, g := range res.Groups {
		for i, p := range g.Players {
			d.Rows = append(d.Rows, map[string]string{
				"division_id": g.Division,
				"group_id":    g.ID,
				"player_id":   p.ID,
				"player":      p.DisplayName(),
				"seed":        flag(i == 0),
			})
		}
	}
	return d
}

// Matches returns the scheduled matches ordered by group and by time block.
func Matches(res *scheduler.Result, roster *model.Roster) (byGroup, byTimeBlock Dataset) {
	byGroup = Dataset{Name: SheetMatchesByGroup, Headers: matchHeaders}
	byTimeBlock = Dataset{Name: SheetMatchesByTimeBlock, Headers: matchHeaders}
	if res.Schedule == nil {
		return byGroup, byTimeBlock
	}
	players := roster.PlayerIndex()
	assignments := res.Schedule.Assignments
	for _, a := range assignments {
		byGroup.Rows = append(byGroup.Rows, matchRow(a, players, res.Prefs))
	}
	sorted := append([]scheduler.Assignment(nil), assignments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].TimeBlock, sorted[j].TimeBlock
		if ti.Day != tj.Day {
			return ti.Day < tj.Day
		}
		if ti.Rank != tj.Rank {
			return ti.Rank < tj.Rank
		}
		return sorted[i].Slot.Court < sorted[j].Slot.Court
	})
	for _, a := range sorted {
		byTimeBlock.Rows = append(byTimeBlock.Rows, matchRow(a, players, res.Prefs))
	}
	return byGroup, byTimeBlock
}

func matchRow(a scheduler.Assignment, players map[string]model.Player, prefs preferences.Table) map[string]string {
	return map[string]string{
		"division_id":        a.Match.Division,
		"group_id":           a.Match.Group,
		"match_id":           a.Match.ID,
		"player1":            players[a.Match.Player1].DisplayName(),
		"player2":            players[a.Match.Player2].DisplayName(),
		"court_id":           a.Slot.Court,
		"time_block_id":      a.Slot.TimeBlock,
		"time_block_ranking": strconv.Itoa(a.TimeBlock.Rank),
		"preferred_slot":     marker(prefs.Value(a.Match.Player1, a.Slot.ID)) + "|" + marker(prefs.Value(a.Match.Player2, a.Slot.ID)),
		"dummy_slot":         flag(a.Slot.Dummy),
	}
}

// Diagnostics lists the run diagnostics as key/value rows.
func Diagnostics(d scheduler.Diagnostics) Dataset {
	var b2b []string
	for _, o := range d.BackToBack {
		b2b = append(b2b, fmt.Sprintf("%s:%s>%s", o.Player, o.From, o.To))
	}
	pairs := [][2]string{
		{"run_id", d.RunID},
		{"status", d.Status},
		{"objective", formatFloat(d.Objective)},
		{"preference", formatFloat(d.Preference)},
		{"dummy_penalty", formatFloat(d.DummyPenalty)},
		{"back_to_back_penalty", formatFloat(d.BackToBackPenalty)},
		{"matches", strconv.Itoa(d.Matches)},
		{"dummy_slots_used", strconv.Itoa(d.DummySlotsUsed)},
		{"unused_dummy_slots", strings.Join(d.UnusedDummySlots, ",")},
		{"back_to_back", strconv.Itoa(len(d.BackToBack))},
		{"back_to_back_detail", strings.Join(b2b, ";")},
		{"variables", strconv.Itoa(d.Variables)},
		{"constraints", strconv.Itoa(d.Constraints)},
		{"nodes", strconv.Itoa(d.Nodes)},
		{"elapsed", d.Elapsed.String()},
	}
	ds := Dataset{Name: SheetDiagnostics, Headers: []string{"key", "value"}}
	for _, p := range pairs {
		ds.Rows = append(ds.Rows, map[string]string{"key": p[0], "value": p[1]})
	}
	return ds
}

// Report returns every result dataset in workbook sheet order.
func Report(res *scheduler.Result, roster *model.Roster) []Dataset {
	byGroup, byTimeBlock := Matches(res, roster)
	return []Dataset{Groups(res), byGroup, byTimeBlock, Diagnostics(res.Diagnostics)}
}

// Preferences lists translated survey preferences.
func Preferences(prefs []model.RawPreference) Dataset {
	d := Dataset{Name: SheetPreferences, Headers: []string{"player_id", "day_portion_id", "preference"}}
	for _, p := range prefs {
		d.Rows = append(d.Rows, map[string]string{
			"player_id":      p.Player,
			"day_portion_id": p.Portion,
			"preference":     strconv.Itoa(p.Value),
		})
	}
	return d
}

func marker(v int) string {
	switch {
	case v > 0:
		return "+"
	case v < 0:
		return "-"
	default:
		return "0"
	}
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
