package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/courtsched/app"
	"github.com/kilianp07/courtsched/config"
)

// scheduleFlags override the loaded configuration when set.
type scheduleFlags struct {
	input, output     string
	csv, json, pdf    string
	summary           bool
	progress          bool
	duration          int
	groupSize         int
	seed              int64
	dummyPenalty      float64
	backToBackPenalty float64
}

func (f *scheduleFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.input, "input", "i", "", "roster workbook or yaml/json document")
	fs.StringVarP(&f.output, "output", "o", "", "output workbook")
	fs.StringVar(&f.csv, "csv", "", "also write matches by time block as CSV")
	fs.StringVar(&f.json, "json", "", "also write the run as JSON")
	fs.StringVar(&f.pdf, "pdf", "", "also write a printable PDF")
	fs.BoolVar(&f.summary, "summary", false, "print the schedule as a table")
	fs.BoolVar(&f.progress, "progress", false, "print run stages to stderr")
	fs.IntVarP(&f.duration, "duration", "d", 0, "solver time budget in seconds")
	fs.IntVar(&f.groupSize, "group-size", 0, "maximum players per group")
	fs.Int64Var(&f.seed, "seed", 0, "seed for group tie-breaking")
	fs.Float64Var(&f.dummyPenalty, "dummy-penalty", 0, "penalty per dummy slot used")
	fs.Float64Var(&f.backToBackPenalty, "back-to-back-penalty", 0, "penalty per back-to-back occurrence")
}

// apply copies changed flags into cfg and revalidates it.
func (f *scheduleFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("input", func() { cfg.Input.Path = f.input })
	set("output", func() { cfg.Output.Path = f.output })
	set("csv", func() { cfg.Output.CSV = f.csv })
	set("json", func() { cfg.Output.JSON = f.json })
	set("pdf", func() { cfg.Output.PDF = f.pdf })
	set("summary", func() { cfg.Output.Summary = f.summary })
	set("duration", func() { cfg.Scheduler.DurationSeconds = f.duration })
	set("group-size", func() { cfg.Scheduler.GroupSize = f.groupSize })
	set("seed", func() { cfg.Scheduler.Seed = f.seed })
	set("dummy-penalty", func() { cfg.Scheduler.DummyPenalty = f.dummyPenalty })
	set("back-to-back-penalty", func() { cfg.Scheduler.BackToBackPenalty = f.backToBackPenalty })
	return cfg.Validate()
}

func newScheduleCmd(o *rootOptions) *cobra.Command {
	sf := &scheduleFlags{}
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Build groups and schedule every match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd, o, sf)
		},
	}
	sf.bind(cmd)
	return cmd
}

func runSchedule(cmd *cobra.Command, o *rootOptions, sf *scheduleFlags) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	if err := sf.apply(cmd, cfg); err != nil {
		return err
	}
	var opts app.Options
	if sf.progress {
		opts.Progress = cmd.ErrOrStderr()
	}
	return withService(cmd, cfg, opts, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Schedule(ctx)
		if err != nil {
			return err
		}
		d := res.Diagnostics
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d matches scheduled (%s, objective %.2f, %d dummy slots, %d back-to-back) -> %s\n",
			res.RunID, len(res.Schedule.Assignments), d.Status, d.Objective, d.DummySlotsUsed, len(d.BackToBack), cfg.Output.Path)
		return err
	})
}
