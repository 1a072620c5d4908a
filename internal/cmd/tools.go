package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/logtriage/internal/tools"
)

// NewToolsCommand lists the agent-facing tools and optionally invokes
// one with JSON arguments.
func NewToolsCommand() *cobra.Command {
	var invoke string
	var argsJSON string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List or invoke the agent-facing triage tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			registry := tools.NewTriageRegistry(svc)

			if invoke == "" {
				for _, tool := range registry.List() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s\n", tool.Name, tool.Description)
				}
				return nil
			}

			toolArgs := map[string]interface{}{}
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
					return fmt.Errorf("invalid --args JSON: %w", err)
				}
			}

			result, err := registry.Execute(cmd.Context(), invoke, toolArgs)
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}

	cmd.Flags().StringVar(&invoke, "invoke", "", "invoke the named tool instead of listing")
	cmd.Flags().StringVar(&argsJSON, "args", "", "JSON object of arguments for --invoke")
	return cmd
}
