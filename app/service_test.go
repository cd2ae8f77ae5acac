package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/courtsched/config"
	"github.com/kilianp07/courtsched/core/factory"
	coremetrics "github.com/kilianp07/courtsched/core/metrics"
	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/scheduler"
	"github.com/kilianp07/courtsched/infra/runlog"
	"github.com/kilianp07/courtsched/infra/workbook"
	"github.com/kilianp07/courtsched/pkg/export"
)

const clubYAML = `
time_blocks:
  - {time_block_id: fri, day: fri, ranking: 1}
  - {time_block_id: sat, day: sat, ranking: 1}
  - {time_block_id: sun, day: sun, ranking: 1}
divisions:
  - {division_id: A, time_blocks: [fri, sat, sun]}
players:
  - {player_id: p1, name: Ana, division_id: A, ranking: 1}
  - {player_id: p2, name: Ben, division_id: A, ranking: 2}
  - {player_id: p3, name: Cai, division_id: A, ranking: 3}
  - {player_id: p4, name: Dev, division_id: A, ranking: 4}
slots:
  - {court_id: c1, time_block_id: fri}
  - {court_id: c2, time_block_id: fri}
  - {court_id: c1, time_block_id: sat}
  - {court_id: c2, time_block_id: sat}
  - {court_id: c1, time_block_id: sun}
  - {court_id: c2, time_block_id: sun}
`

const crowdedYAML = `
time_blocks:
  - {time_block_id: t1, ranking: 1}
divisions:
  - {division_id: A, time_blocks: [t1]}
players:
  - {player_id: p1, division_id: A, ranking: 1}
  - {player_id: p2, division_id: A, ranking: 2}
  - {player_id: p3, division_id: A, ranking: 3}
slots:
  - {court_id: c1, time_block_id: t1}
`

type recordingSink struct {
	events  []coremetrics.RunEvent
	flushed int
}

func (s *recordingSink) RecordRun(ev coremetrics.RunEvent) error {
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Flush(context.Context) error {
	s.flushed++
	return nil
}

type recordingNotifier struct {
	runs     []string
	payloads [][]byte
	closed   bool
	err      error
}

func (n *recordingNotifier) PublishRun(runID string, payload []byte) error {
	n.runs = append(n.runs, runID)
	n.payloads = append(n.payloads, payload)
	return n.err
}

func (n *recordingNotifier) Close() { n.closed = true }

type harness struct {
	dir      string
	cfg      *config.Config
	svc      *Service
	sink     *recordingSink
	notifier *recordingNotifier
	out      *bytes.Buffer
}

func newHarness(t *testing.T, rosterDoc string) *harness {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "club.yaml")
	require.NoError(t, os.WriteFile(input, []byte(rosterDoc), 0o644))

	cfg := config.Default()
	cfg.Input.Path = input
	cfg.Output.Path = filepath.Join(dir, "schedule.xlsx")
	cfg.Scheduler.DurationSeconds = 10

	journal, err := runlog.NewJSONLStore(filepath.Join(dir, "runs.jsonl"), 1, 1, 0)
	require.NoError(t, err)
	h := &harness{dir: dir, cfg: &cfg, sink: &recordingSink{}, notifier: &recordingNotifier{}, out: &bytes.Buffer{}}
	h.svc, err = New(h.cfg, Options{Journal: journal, Sink: h.sink, Notifier: h.notifier, Out: h.out})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.svc.Close() })
	return h
}

func (h *harness) history(t *testing.T) []runlog.RunRecord {
	t.Helper()
	recs, err := h.svc.History(context.Background(), runlog.Query{})
	require.NoError(t, err)
	return recs
}

func TestScheduleWritesOutputs(t *testing.T) {
	h := newHarness(t, clubYAML)
	h.cfg.Output.CSV = filepath.Join(h.dir, "schedule.csv")
	h.cfg.Output.JSON = filepath.Join(h.dir, "schedule.json")
	h.cfg.Output.PDF = filepath.Join(h.dir, "schedule.pdf")
	h.cfg.Output.Summary = true

	res, err := h.svc.Schedule(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExitOK, ExitCode(err))
	require.Len(t, res.Schedule.Assignments, 6)

	f, err := excelize.OpenFile(h.cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, []string{export.SheetGroups, export.SheetMatchesByGroup, export.SheetMatchesByTimeBlock, export.SheetDiagnostics}, f.GetSheetList())
	rows, err := f.GetRows(export.SheetMatchesByTimeBlock)
	require.NoError(t, err)
	assert.Len(t, rows, 7)
	require.NoError(t, f.Close())

	csv, err := os.ReadFile(h.cfg.Output.CSV)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(csv)), "\n"), 7)

	raw, err := os.ReadFile(h.cfg.Output.JSON)
	require.NoError(t, err)
	var doc export.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, res.RunID, doc.RunID)
	assert.Len(t, doc.Assignments, 6)

	pdf, err := os.ReadFile(h.cfg.Output.PDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	assert.Contains(t, h.out.String(), export.SheetMatchesByTimeBlock)
	assert.Contains(t, h.out.String(), "Ana")

	recs := h.history(t)
	require.Len(t, recs, 1)
	assert.Equal(t, res.RunID, recs[0].RunID)
	assert.Equal(t, "optimal", recs[0].Status)
	assert.Equal(t, h.cfg.Output.Path, recs[0].Output)
	assert.Equal(t, 4, recs[0].Players)
	assert.Equal(t, 6, recs[0].Matches)
	assert.Empty(t, recs[0].Error)

	require.Len(t, h.sink.events, 1)
	assert.Equal(t, 6, h.sink.events[0].Scheduled)
	assert.Equal(t, "optimal", h.sink.events[0].Status)
	assert.Equal(t, 1, h.sink.flushed)

	require.Equal(t, []string{res.RunID}, h.notifier.runs)
	var summary runlog.RunRecord
	require.NoError(t, json.Unmarshal(h.notifier.payloads[0], &summary))
	assert.Equal(t, "optimal", summary.Status)
}

func TestScheduleInfeasible(t *testing.T) {
	h := newHarness(t, crowdedYAML)
	res, err := h.svc.Schedule(context.Background())
	require.ErrorIs(t, err, scheduler.ErrInfeasible)
	assert.Equal(t, ExitInfeasible, ExitCode(err))
	require.NotNil(t, res)
	assert.Nil(t, res.Schedule)

	_, statErr := os.Stat(h.cfg.Output.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))

	recs := h.history(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "infeasible", recs[0].Status)
	assert.Equal(t, 3, recs[0].Matches)
	assert.NotEmpty(t, recs[0].Error)
	assert.Empty(t, recs[0].Output)
	require.Len(t, h.sink.events, 1)
	assert.Zero(t, h.sink.events[0].Scheduled)
	assert.Len(t, h.notifier.runs, 1)
}

func TestScheduleInvalidInput(t *testing.T) {
	h := newHarness(t, strings.Replace(clubYAML, "division_id: A, ranking: 4", "division_id: B, ranking: 4", 1))
	res, err := h.svc.Schedule(context.Background())
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Nil(t, res)
	assert.Equal(t, ExitInvalid, ExitCode(err))

	recs := h.history(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "invalid", recs[0].Status)
	assert.NotEmpty(t, recs[0].RunID)
	assert.Contains(t, recs[0].Error, "p4")
}

func TestScheduleMissingInput(t *testing.T) {
	h := newHarness(t, clubYAML)
	h.cfg.Input.Path = filepath.Join(h.dir, "absent.yaml")
	_, err := h.svc.Schedule(context.Background())
	require.Error(t, err)
	assert.Equal(t, ExitInvalid, ExitCode(err))
	assert.Len(t, h.history(t), 1)
}

func TestScheduleNotifierFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, clubYAML)
	h.notifier.err = errors.New("broker down")
	_, err := h.svc.Schedule(context.Background())
	require.NoError(t, err)
	assert.Len(t, h.notifier.runs, 1)
}

func TestValidate(t *testing.T) {
	h := newHarness(t, clubYAML)
	r, err := h.svc.Validate(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.Players, 4)

	bad := newHarness(t, strings.Replace(clubYAML, "time_block_id: sun}\n", "time_block_id: mon}\n", 1))
	_, err = bad.svc.Validate(context.Background())
	require.ErrorIs(t, err, model.ErrInvalidInput)
	assert.Contains(t, err.Error(), "mon")
}

func TestExpandPreferences(t *testing.T) {
	h := newHarness(t, clubYAML)
	h.cfg.Input.Path = filepath.Join(h.dir, "survey.xlsx")
	h.cfg.Output.Path = filepath.Join(h.dir, "parsed.xlsx")
	h.cfg.Preferences.Columns = []config.ColumnMapping{{Column: "Saturday", Portion: "sat"}, {Column: "Sunday", Portion: "sun"}}
	require.NoError(t, workbook.Write(h.cfg.Input.Path, export.Dataset{
		Name:    "raw_preferences",
		Headers: []string{"player_id", "name", "Saturday", "Sunday"},
		Rows: []map[string]string{
			{"player_id": "p1", "name": "Ana", "Saturday": "Yes", "Sunday": "no"},
			{"player_id": "p2", "name": "Ben", "Saturday": "maybe"},
		},
	}))

	prefs, err := h.svc.ExpandPreferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.RawPreference{
		{Player: "p1", Portion: "sat", Value: 1},
		{Player: "p1", Portion: "sun", Value: -1},
		{Player: "p2", Portion: "sat", Value: 0},
		{Player: "p2", Portion: "sun", Value: 0},
	}, prefs)

	f, err := excelize.OpenFile(h.cfg.Output.Path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(export.SheetPreferences)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "sun", "-1"}, rows[2])

	h.cfg.Preferences.Columns = h.cfg.Preferences.Columns[:1]
	_, err = h.svc.ExpandPreferences(context.Background())
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Path = filepath.Join(t.TempDir(), "runs.jsonl")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	svc, err := New(&cfg, Options{})
	require.NoError(t, err)
	assert.Nil(t, svc.notifier)
	assert.Equal(t, coremetrics.NopSink{}, svc.sink)
	require.NoError(t, svc.Close())

	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "carrier-pigeon"}}
	_, err = New(&cfg, Options{})
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
}

func TestScheduleReportsProgress(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "club.yaml")
	require.NoError(t, os.WriteFile(input, []byte(clubYAML), 0o644))
	cfg := config.Default()
	cfg.Input.Path = input
	cfg.Output.Path = filepath.Join(dir, "schedule.xlsx")
	cfg.Logging.Path = filepath.Join(dir, "runs.jsonl")

	var progress bytes.Buffer
	svc, err := New(&cfg, Options{Sink: coremetrics.NopSink{}, Out: io.Discard, Progress: &progress})
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	_, err = svc.Schedule(context.Background())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "grouped")
	assert.Contains(t, lines[0], "1 groups, 6 matches")
	assert.Contains(t, lines[3], "scheduled")
}

func TestExitCode(t *testing.T) {
	cases := map[error]int{
		nil: ExitOK,
		fmt.Errorf("load: %w", model.ErrInvalidInput):      ExitInvalid,
		fmt.Errorf("cfg: %w", model.ErrInvalidConfig):      ExitInvalid,
		fmt.Errorf("run: %w", scheduler.ErrInfeasible):     ExitInfeasible,
		fmt.Errorf("run: %w", scheduler.ErrTimeout):        ExitTimeout,
		fmt.Errorf("run: %w", scheduler.ErrSolver):         ExitSolver,
		fmt.Errorf("run: %w", scheduler.ErrInconsistent):   ExitSolver,
		errors.New("disk full"):                            ExitError,
	}
	for err, want := range cases {
		assert.Equal(t, want, ExitCode(err), "%v", err)
	}
}

func TestHistoryDataset(t *testing.T) {
	d := HistoryDataset([]runlog.RunRecord{{
		RunID: "r1", Status: "feasible", Objective: 2.5, Matches: 9, DurationMS: 1500,
		Timestamp: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}})
	require.Len(t, d.Rows, 1)
	assert.Equal(t, "2.50", d.Rows[0]["objective"])
	assert.Equal(t, "1.5s", d.Rows[0]["duration"])
	assert.Equal(t, "9", d.Rows[0]["matches"])
}
