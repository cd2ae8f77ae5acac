package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/courtsched/app"
)

func newExpandCmd(o *rootOptions) *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Translate the raw_preferences survey sheet into player preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, o)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("input") {
				cfg.Input.Path = input
			}
			if cmd.Flags().Changed("output") {
				cfg.Output.Path = output
			}
			return withService(cmd, cfg, app.Options{}, func(ctx context.Context, svc *app.Service) error {
				prefs, err := svc.ExpandPreferences(ctx)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d preferences written to %s\n", len(prefs), cfg.Output.Path)
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "workbook with a raw_preferences sheet")
	cmd.Flags().StringVarP(&output, "output", "o", "", "workbook receiving the parsed_preferences sheet")
	return cmd
}
