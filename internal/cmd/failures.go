package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewFailuresCommand lists the failed scenarios from a stage's most
// recent run.
func NewFailuresCommand() *cobra.Command {
	var family string
	var detailed bool

	cmd := &cobra.Command{
		Use:   "failures <stage>",
		Short: "List failed scenarios for a stage's most recent run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			stage := args[0]
			scan := svc.FailedScenarios
			if detailed {
				scan = svc.FailureDetails
			}
			failed, err := scan(family, stage)
			if err != nil {
				return err
			}
			if len(failed) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no failed scenarios for stage %q\n", stage)
				return nil
			}

			red := color.New(color.FgRed).SprintFunc()
			for _, item := range failed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", red("FAIL"), item.Scenario, item.Timestamp)
				if detailed {
					if item.Category != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "  category: %s\n", item.Category)
					}
					if item.FilePath != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "  location: %s:%d\n", item.FilePath, item.Line)
					}
					if item.RootCause != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "  root cause: %s\n", item.RootCause)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "log family to scan (defaults to the only configured family)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include stack traces, locations, and root causes")
	return cmd
}
