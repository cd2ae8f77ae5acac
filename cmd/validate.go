package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/courtsched/app"
)

func newValidateCmd(o *rootOptions) *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and check the roster without solving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.Input.Path = input
			}
			return withService(cmd, cfg, app.Options{}, func(ctx context.Context, svc *app.Service) error {
				r, err := svc.Validate(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d players, %d divisions, %d time blocks, %d slots, %d preferences\n",
					cfg.Input.Path, len(r.Players), len(r.Divisions), len(r.TimeBlocks), len(r.Slots), len(r.Preferences))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "roster workbook or yaml/json document")
	return cmd
}
