package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReportCommand renders the markdown triage report for a stage.
func NewReportCommand() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "report <stage>",
		Short: "Render a markdown triage report for a stage's most recent run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			md, err := svc.BuildReport(family, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "log family to scan (defaults to the only configured family)")
	return cmd
}
