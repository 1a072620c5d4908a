package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSummaryCommand prints pass/fail tallies for recent runs.
func NewSummaryCommand() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show pass/fail tallies for recent runs of every stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			summaries, err := svc.ScenarioSummaries(family)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs found")
				return nil
			}

			for _, sum := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s  total=%d passed=%d failed=%d\n",
					sum.Stage, sum.Datetime, sum.Total, sum.Passed, sum.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "log family to scan (defaults to the only configured family)")
	return cmd
}
