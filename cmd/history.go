package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/courtsched/app"
	"github.com/kilianp07/courtsched/infra/runlog"
	"github.com/kilianp07/courtsched/pkg/export"
)

func newHistoryCmd(o *rootOptions) *cobra.Command {
	var (
		status string
		since  time.Duration
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scheduling runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			q := runlog.Query{Status: status, Limit: limit}
			if since > 0 {
				q.Since = time.Now().Add(-since)
			}
			return withService(cmd, cfg, app.Options{}, func(ctx context.Context, svc *app.Service) error {
				recs, err := svc.History(ctx, q)
				if err != nil {
					return err
				}
				if len(recs) == 0 {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), export.RenderTable(app.HistoryDataset(recs)))
				return err
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only runs with this status")
	cmd.Flags().DurationVar(&since, "since", 0, "only runs newer than this, e.g. 24h")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs")
	return cmd
}
