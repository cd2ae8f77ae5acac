// Package runlog keeps a journal of scheduling runs so that past outcomes can
// be listed with the history command.
package runlog

import (
	"context"
	"sort"
	"time"
)

// RunRecord captures the outcome of one scheduling run, successful or not.
type RunRecord struct {
	RunID          string    `json:"run_id"`
	Timestamp      time.Time `json:"timestamp"`
	Input          string    `json:"input"`
	Output         string    `json:"output,omitempty"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	Objective      float64   `json:"objective"`
	Players        int       `json:"players"`
	Groups         int       `json:"groups"`
	Matches        int       `json:"matches"`
	DummySlotsUsed int       `json:"dummy_slots_used"`
	BackToBack     int       `json:"back_to_back"`
	Nodes          int       `json:"nodes"`
	DurationMS     int64     `json:"duration_ms"`
}

// Query filters journal entries. Zero fields do not filter.
type Query struct {
	Status string
	Since  time.Time
	Limit  int
}

func (q Query) match(r RunRecord) bool {
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if !q.Since.IsZero() && r.Timestamp.Before(q.Since) {
		return false
	}
	return true
}

// Store persists RunRecords. Query returns the newest records first.
type Store interface {
	Append(ctx context.Context, rec RunRecord) error
	Query(ctx context.Context, q Query) ([]RunRecord, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, RunRecord) error            { return nil }
func (NopStore) Query(context.Context, Query) ([]RunRecord, error) { return nil, nil }
func (NopStore) Close() error                                       { return nil }

// newestFirst sorts records by descending timestamp and applies the limit.
func newestFirst(recs []RunRecord, limit int) []RunRecord {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Timestamp.After(recs[j].Timestamp) })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}
