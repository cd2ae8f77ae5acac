// Package app wires configuration, input, the scheduler and the run side
// effects (outputs, journal, metrics, notification) behind the CLI commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/courtsched/config"
	"github.com/kilianp07/courtsched/core/events"
	coremetrics "github.com/kilianp07/courtsched/core/metrics"
	"github.com/kilianp07/courtsched/core/model"
	coremqtt "github.com/kilianp07/courtsched/core/mqtt"
	"github.com/kilianp07/courtsched/core/preferences"
	"github.com/kilianp07/courtsched/core/scheduler"
	"github.com/kilianp07/courtsched/core/solver"
	"github.com/kilianp07/courtsched/infra/logger"
	"github.com/kilianp07/courtsched/infra/lp"
	_ "github.com/kilianp07/courtsched/infra/metrics"
	"github.com/kilianp07/courtsched/infra/mqtt"
	"github.com/kilianp07/courtsched/infra/roster"
	"github.com/kilianp07/courtsched/infra/runlog"
	"github.com/kilianp07/courtsched/infra/workbook"
	"github.com/kilianp07/courtsched/internal/eventbus"
	"github.com/kilianp07/courtsched/pkg/export"
)

// Options overrides collaborators built from the configuration. Nil fields
// are created from the configuration.
type Options struct {
	Engine   solver.Engine
	Journal  runlog.Store
	Sink     coremetrics.MetricsSink
	Notifier coremqtt.Publisher
	// Out receives terminal summaries; defaults to stdout.
	Out io.Writer
	// Progress receives one line per run stage when set.
	Progress io.Writer
}

// Service runs the courtsched commands.
type Service struct {
	cfg       *config.Config
	scheduler *scheduler.Scheduler
	journal   runlog.Store
	sink      coremetrics.MetricsSink
	notifier  coremqtt.Publisher
	out       io.Writer
	progress  io.Writer
	events    *eventbus.Bus[events.StageEvent]
	log       logger.Logger
}

// New creates a Service from the configuration. A broker that cannot be
// reached disables notifications instead of failing the run.
func New(cfg *config.Config, opts Options) (*Service, error) {
	logg := logger.New("service")
	s := &Service{
		cfg: cfg, journal: opts.Journal, sink: opts.Sink, notifier: opts.Notifier,
		out: opts.Out, progress: opts.Progress, events: eventbus.New[events.StageEvent](), log: logg,
	}
	engine := opts.Engine
	if engine == nil {
		engine = lp.NewEngine(logger.New("lp"))
	}
	s.scheduler = scheduler.New(cfg.Scheduler, engine, logger.New("scheduler"))
	s.scheduler.Events = s.events
	if s.out == nil {
		s.out = os.Stdout
	}
	if s.journal == nil {
		j, err := runlog.Open(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("run journal: %w", err)
		}
		s.journal = j
	}
	if s.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			_ = s.journal.Close()
			return nil, fmt.Errorf("%w: metrics sink: %v", model.ErrInvalidConfig, err)
		}
		s.sink = sink
	}
	if s.notifier == nil && cfg.MQTT.Enabled() {
		n, err := mqtt.NewNotifier(cfg.MQTT)
		if err != nil {
			logg.Warnf("run notifications disabled: %v", err)
		} else {
			s.notifier = n
		}
	}
	return s, nil
}

// Close releases the journal, the notifier and closable sinks.
func (s *Service) Close() error {
	s.events.Close()
	if s.notifier != nil {
		s.notifier.Close()
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	return s.journal.Close()
}

// Schedule loads the roster, runs the scheduler and writes the configured
// outputs. Every run, successful or not, is journaled, recorded by the
// metrics sinks and announced over MQTT.
func (s *Service) Schedule(ctx context.Context) (*scheduler.Result, error) {
	start := time.Now()
	in := s.cfg.Input.Path
	r, err := roster.Load(in)
	if err != nil {
		s.record(ctx, start, nil, nil, err)
		return nil, err
	}
	stop := s.followProgress()
	res, err := s.scheduler.Run(ctx, r)
	stop()
	if err == nil {
		err = s.writeOutputs(res, r)
	}
	s.record(ctx, start, r, res, err)
	return res, err
}

// followProgress prints stage events to the progress writer until the
// returned function is called.
func (s *Service) followProgress() func() {
	if s.progress == nil {
		return func() {}
	}
	ch := s.events.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			_, _ = fmt.Fprintf(s.progress, "%s %-12s %s\n", ev.At.Format("15:04:05"), ev.Stage, ev.Detail)
		}
	}()
	return func() {
		s.events.Unsubscribe(ch)
		<-done
	}
}

func (s *Service) writeOutputs(res *scheduler.Result, r *model.Roster) error {
	out := s.cfg.Output
	report := export.Report(res, r)
	if err := workbook.Write(out.Path, report...); err != nil {
		return err
	}
	s.log.Infof("schedule written to %s", out.Path)
	_, byTimeBlock := export.Matches(res, r)
	if out.CSV != "" {
		if err := writeFile(out.CSV, func(w io.Writer) error { return export.WriteCSV(w, byTimeBlock) }); err != nil {
			return err
		}
	}
	if out.JSON != "" {
		if err := writeFile(out.JSON, func(w io.Writer) error { return export.WriteJSON(w, res) }); err != nil {
			return err
		}
	}
	if out.PDF != "" {
		pdf, err := export.NewPDFExporter().Render("Court schedule", report...)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out.PDF, pdf, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out.PDF, err)
		}
	}
	if out.Summary {
		for _, d := range []export.Dataset{byTimeBlock, export.Diagnostics(res.Diagnostics)} {
			if _, err := fmt.Fprintln(s.out, export.RenderTable(d)); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// record journals the run and forwards it to metrics and MQTT. Failures of
// these side channels are logged only.
func (s *Service) record(ctx context.Context, start time.Time, r *model.Roster, res *scheduler.Result, runErr error) {
	rec := runRecord(start, s.cfg.Input.Path, r, res, runErr)
	if runErr == nil {
		rec.Output = s.cfg.Output.Path
	}
	if err := s.journal.Append(ctx, rec); err != nil {
		s.log.Errorf("journal run %s: %v", rec.RunID, err)
	}

	ev := coremetrics.RunEvent{
		RunID: rec.RunID, Status: rec.Status, Objective: rec.Objective, Players: rec.Players,
		Groups: rec.Groups, Matches: rec.Matches, DummySlotsUsed: rec.DummySlotsUsed,
		BackToBack: rec.BackToBack, Nodes: rec.Nodes, Duration: time.Since(start), Time: rec.Timestamp,
	}
	if res != nil && res.Schedule != nil {
		ev.Scheduled = len(res.Schedule.Assignments)
	}
	if err := s.sink.RecordRun(ev); err != nil {
		s.log.Errorf("record metrics for run %s: %v", rec.RunID, err)
	}
	if f, ok := s.sink.(coremetrics.Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			s.log.Errorf("flush metrics for run %s: %v", rec.RunID, err)
		}
	}

	if s.notifier != nil {
		payload, err := json.Marshal(rec)
		if err == nil {
			err = s.notifier.PublishRun(rec.RunID, payload)
		}
		if err != nil {
			s.log.Errorf("notify run %s: %v", rec.RunID, err)
		}
	}
}

func runRecord(start time.Time, input string, r *model.Roster, res *scheduler.Result, runErr error) runlog.RunRecord {
	rec := runlog.RunRecord{RunID: uuid.NewString(), Timestamp: start.UTC(), Input: input, Status: "invalid"}
	if r != nil {
		rec.Players = len(r.Players)
	}
	if res != nil {
		d := res.Diagnostics
		rec.RunID = res.RunID
		rec.Status = d.Status
		rec.Objective = d.Objective
		rec.Groups = len(res.Groups)
		rec.Matches = len(res.Matches)
		rec.DummySlotsUsed = d.DummySlotsUsed
		rec.BackToBack = len(d.BackToBack)
		rec.Nodes = d.Nodes
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	rec.DurationMS = time.Since(start).Milliseconds()
	return rec
}

// ExpandPreferences translates the raw_preferences survey sheet of the input
// workbook and writes the result to the parsed_preferences sheet of the
// output workbook.
func (s *Service) ExpandPreferences(ctx context.Context) ([]model.RawPreference, error) {
	wb, err := workbook.Open(s.cfg.Input.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()
	rows, err := wb.Survey()
	if err != nil {
		return nil, err
	}
	prefs, err := s.cfg.Preferences.Translator().Translate(rows)
	if err != nil {
		return nil, err
	}
	if err := workbook.Write(s.cfg.Output.Path, export.Preferences(prefs)); err != nil {
		return nil, err
	}
	s.log.Infof("%d preferences of %d players written to %s", len(prefs), len(rows), s.cfg.Output.Path)
	return prefs, nil
}

// Validate loads and checks the roster without solving. Preference expansion
// runs too so that uncovered time blocks are reported.
func (s *Service) Validate(ctx context.Context) (*model.Roster, error) {
	r, err := roster.Load(s.cfg.Input.Path)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := preferences.Expand(r.Players, r.Slots, r.EffectivePortions(), r.Preferences); err != nil {
		return nil, err
	}
	return r, nil
}

// History lists journaled runs, newest first.
func (s *Service) History(ctx context.Context, q runlog.Query) ([]runlog.RunRecord, error) {
	return s.journal.Query(ctx, q)
}
