package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTicketsCommand files tracker tickets for new failures.
func NewTicketsCommand() *cobra.Command {
	var family string

	cmd := &cobra.Command{
		Use:   "tickets <stage>",
		Short: "File tracker tickets for a stage's new failures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			filed, err := svc.FileTickets(cmd.Context(), family, args[0])
			if err != nil {
				return err
			}
			if len(filed) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no failures to file")
				return nil
			}
			for _, ticket := range filed {
				status := "filed"
				if ticket.Existing {
					status = "already tracked"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s (%s)\n", ticket.Key, ticket.Scenario, status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&family, "family", "", "log family to scan (defaults to the only configured family)")
	return cmd
}
