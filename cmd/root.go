package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/courtsched/app"
	"github.com/kilianp07/courtsched/config"
)

type rootOptions struct {
	cfgPath string
}

func newRootCmd() *cobra.Command {
	o := &rootOptions{}
	sf := &scheduleFlags{}
	root := &cobra.Command{
		Use:           "courtsched",
		Short:         "Round-robin tennis match scheduler",
		Long:          "courtsched groups club players into round-robin groups and assigns every match to a court slot.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadDotEnv()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSchedule(cmd, o, sf)
		},
	}
	root.PersistentFlags().StringVarP(&o.cfgPath, "config", "c", config.DefaultPath, "configuration file (yaml or json)")
	sf.bind(root)
	root.AddCommand(newScheduleCmd(o), newExpandCmd(o), newValidateCmd(o), newHistoryCmd(o))
	return root
}

// Run executes the CLI with args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
	}
	return app.ExitCode(err)
}

// Execute runs the CLI with the process arguments.
func Execute() int { return Run(os.Args[1:], os.Stdout, os.Stderr) }

// loadDotEnv loads .env from the working directory when present.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load()
}

// loadConfig reads the configuration. A missing file at the default path
// means defaults and environment overrides only.
func loadConfig(cmd *cobra.Command, o *rootOptions) (*config.Config, error) {
	path := o.cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return config.Load(path)
}

func withService(cmd *cobra.Command, cfg *config.Config, opts app.Options, fn func(context.Context, *app.Service) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	opts.Out = cmd.OutOrStdout()
	svc, err := app.New(cfg, opts)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	return fn(ctx, svc)
}
