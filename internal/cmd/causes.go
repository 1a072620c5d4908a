package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCausesCommand prints root causes from the rotated error logs and
// the description histogram for a stage.
func NewCausesCommand() *cobra.Command {
	var family string
	var stage string

	cmd := &cobra.Command{
		Use:   "causes",
		Short: "Show classified root causes from recent error logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			causes, err := svc.ErrorRootCauses()
			if err != nil {
				return err
			}
			for _, cause := range causes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n  %s\n", cause.ErrorID, cause.Message, cause.RootCause)
			}

			if stage != "" {
				counts, err := svc.ErrorDescriptionCounts(family, stage)
				if err != nil {
					return err
				}
				if len(counts) > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "\nfailure histogram for stage %q:\n", stage)
					for _, bucket := range counts {
						fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", bucket.Count, firstLine(bucket.Description))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "log family to scan (defaults to the only configured family)")
	cmd.Flags().StringVar(&stage, "stage", "", "also print the failure histogram for this stage")
	return cmd
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
