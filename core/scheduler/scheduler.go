package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/courtsched/core/events"
	"github.com/kilianp07/courtsched/core/logger"
	"github.com/kilianp07/courtsched/core/model"
	"github.com/kilianp07/courtsched/core/preferences"
	"github.com/kilianp07/courtsched/core/roundrobin"
	"github.com/kilianp07/courtsched/core/solver"
	"github.com/kilianp07/courtsched/internal/eventbus"
)

// Result is everything a run produced. Schedule is nil when the run failed;
// Groups, Matches and Diagnostics are filled as far as the run got.
type Result struct {
	RunID       string
	Groups      []roundrobin.Group
	Matches     []roundrobin.Match
	Prefs       preferences.Table
	Schedule    *Schedule
	Diagnostics Diagnostics
}

// Scheduler runs the scheduling pipeline.
type Scheduler struct {
	Config Config
	Engine solver.Engine
	Log    logger.Logger
	// Events receives stage progress when set.
	Events *eventbus.Bus[events.StageEvent]
}

// New returns a Scheduler.
func New(cfg Config, engine solver.Engine, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{Config: cfg, Engine: engine, Log: log}
}

// Run validates the roster, builds groups and matches, solves the assignment
// model within the configured budget and extracts the schedule. The returned
// Result is non-nil whenever the roster passed validation, including on
// infeasibility, so callers can record the failed run.
func (s *Scheduler) Run(ctx context.Context, roster *model.Roster) (*Result, error) {
	start := time.Now()
	if s.Log == nil {
		s.Log = logger.NopLogger{}
	}
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	if s.Engine == nil {
		return nil, fmt.Errorf("%w: no engine configured", ErrSolver)
	}
	if err := roster.Validate(); err != nil {
		return nil, err
	}

	res := &Result{RunID: uuid.NewString()}
	res.Diagnostics.RunID = res.RunID
	fail := func(status string, err error) (*Result, error) {
		res.Diagnostics.Status = status
		res.Diagnostics.Elapsed = time.Since(start)
		s.Log.Errorf("run %s failed: %v", res.RunID, err)
		s.emit(res.RunID, events.StageFailed, "%s: %v", status, err)
		return res, err
	}

	prefs, err := preferences.Expand(roster.Players, roster.Slots, roster.EffectivePortions(), roster.Preferences)
	if err != nil {
		return fail("invalid", err)
	}
	res.Prefs = prefs

	builder := roundrobin.GroupBuilder{DefaultSize: s.Config.GroupSize, Seed: s.Config.Seed}
	groups, err := builder.Build(roster.Players, roster.Divisions)
	if err != nil {
		return fail("invalid", err)
	}
	res.Groups = groups
	matches, err := roundrobin.GenerateMatches(groups)
	if err != nil {
		return fail("invalid", err)
	}
	res.Matches = matches
	s.Log.Infof("run %s: %d players, %d groups, %d matches, %d slots",
		res.RunID, len(roster.Players), len(groups), len(matches), len(roster.Slots))
	s.emit(res.RunID, events.StageGrouped, "%d groups, %d matches", len(groups), len(matches))

	build, err := BuildModel(Inputs{Roster: roster, Matches: matches, Prefs: prefs, Weights: s.Config.Weights()})
	if err != nil {
		return fail("invalid", err)
	}
	res.Diagnostics.Matches = len(matches)
	res.Diagnostics.Variables = len(build.Model.Variables)
	res.Diagnostics.Constraints = len(build.Model.Constraints)
	s.Log.Debugw("model built", map[string]any{
		"run_id":      res.RunID,
		"variables":   len(build.Model.Variables),
		"constraints": len(build.Model.Constraints),
		"adjacency":   len(build.Adjacency),
	})
	s.emit(res.RunID, events.StageModelBuilt, "%d variables, %d constraints", len(build.Model.Variables), len(build.Model.Constraints))
	if len(build.Unplaceable) > 0 {
		return fail(solver.StatusInfeasible.String(), fmt.Errorf("%w: no eligible slot for matches %s",
			ErrInfeasible, strings.Join(build.Unplaceable, ", ")))
	}

	build.Model.Start = build.WarmStart(warmStartSteps)
	if build.Model.Start != nil {
		s.Log.Debugw("start assignment found", map[string]any{
			"run_id":    res.RunID,
			"objective": build.Model.Evaluate(build.Model.Start),
		})
	}

	sol := s.Engine.Solve(ctx, build.Model, s.Config.Budget())
	res.Diagnostics.Nodes = sol.Nodes
	s.Log.Infof("run %s: solver status %s objective %.2f after %d nodes",
		res.RunID, sol.Status, sol.Objective, sol.Nodes)
	s.emit(res.RunID, events.StageSolved, "%s after %d nodes", sol.Status, sol.Nodes)
	sched, err := Extract(build, sol)
	if err != nil {
		status := sol.Status
		if errors.Is(err, ErrInconsistent) {
			status = solver.StatusError
		}
		return fail(status.String(), err)
	}
	sched.Diagnostics.RunID = res.RunID
	sched.Diagnostics.Elapsed = time.Since(start)
	res.Schedule = sched
	res.Diagnostics = sched.Diagnostics
	if len(sched.Diagnostics.UnusedDummySlots) > 0 {
		s.Log.Debugw("unused dummy slots", map[string]any{"run_id": res.RunID, "slots": sched.Diagnostics.UnusedDummySlots})
	}
	s.Log.Infof("run %s: scheduled %d matches, %d dummy slots used, %d back-to-back",
		res.RunID, len(sched.Assignments), sched.Diagnostics.DummySlotsUsed, len(sched.Diagnostics.BackToBack))
	s.emit(res.RunID, events.StageScheduled, "%d matches, objective %.2f", len(sched.Assignments), sched.Diagnostics.Objective)
	return res, nil
}

func (s *Scheduler) emit(runID string, stage events.Stage, format string, args ...any) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(events.StageEvent{RunID: runID, Stage: stage, Detail: fmt.Sprintf(format, args...), At: time.Now()})
}
