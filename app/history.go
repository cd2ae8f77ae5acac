package app

import (
	"strconv"
	"time"

	"github.com/kilianp07/courtsched/infra/runlog"
	"github.com/kilianp07/courtsched/pkg/export"
)

// HistoryDataset lays out journal records for the terminal.
func HistoryDataset(recs []runlog.RunRecord) export.Dataset {
	d := export.Dataset{
		Name:    "runs",
		Headers: []string{"time", "run_id", "status", "objective", "matches", "dummy", "b2b", "duration", "error"},
	}
	for _, r := range recs {
		d.Rows = append(d.Rows, map[string]string{
			"time":      r.Timestamp.Local().Format(time.DateTime),
			"run_id":    r.RunID,
			"status":    r.Status,
			"objective": strconv.FormatFloat(r.Objective, 'f', 2, 64),
			"matches":   strconv.Itoa(r.Matches),
			"dummy":     strconv.Itoa(r.DummySlotsUsed),
			"b2b":       strconv.Itoa(r.BackToBack),
			"duration":  (time.Duration(r.DurationMS) * time.Millisecond).String(),
			"error":     r.Error,
		})
	}
	return d
}
