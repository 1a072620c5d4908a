package tools

import (
	"context"

	"github.com/harrison/logtriage/internal/engine"
)

// must panics on a failed built-in registration. The built-in set has
// unique names and non-nil handlers, so a failure here is a programming
// error.
func must(err error) {
	if err != nil {
		panic(err)
	}
}

// NewTriageRegistry registers the standard triage tool set over a
// service. The service owns error recovery: I/O failures are recorded on
// its diagnostic sink and surfaced here as plain errors.
func NewTriageRegistry(svc *engine.Service) *Registry {
	registry := NewRegistry()

	must(registry.Register(Tool{
		Name:        "failed_scenarios",
		Description: "List failed scenarios from the most recent run of a stage. Arguments: family (optional), stage (required).",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			stage, err := RequiredStringArg(args, "stage")
			if err != nil {
				return nil, err
			}
			return svc.FailedScenarios(StringArg(args, "family"), stage)
		},
	}))

	must(registry.Register(Tool{
		Name:        "failure_details",
		Description: "List failed scenarios with stack traces, code locations, and root-cause classification. Arguments: family (optional), stage (required).",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			stage, err := RequiredStringArg(args, "stage")
			if err != nil {
				return nil, err
			}
			return svc.FailureDetails(StringArg(args, "family"), stage)
		},
	}))

	must(registry.Register(Tool{
		Name:        "scenario_summaries",
		Description: "Pass/fail tallies for the recent runs of every stage in a family. Arguments: family (optional).",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return svc.ScenarioSummaries(StringArg(args, "family"))
		},
	}))

	must(registry.Register(Tool{
		Name:        "error_description_counts",
		Description: "Histogram of failure descriptions for a stage, most frequent first. Arguments: family (optional), stage (required).",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			stage, err := RequiredStringArg(args, "stage")
			if err != nil {
				return nil, err
			}
			return svc.ErrorDescriptionCounts(StringArg(args, "family"), stage)
		},
	}))

	must(registry.Register(Tool{
		Name:        "error_root_causes",
		Description: "Root causes for records in the rotated error logs that carry an explicit error identifier. No arguments.",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return svc.ErrorRootCauses()
		},
	}))

	must(registry.Register(Tool{
		Name:        "find_message",
		Description: "Find the first file and line containing a message substring across a family's recent logs. Arguments: family (optional), message (required).",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			message, err := RequiredStringArg(args, "message")
			if err != nil {
				return nil, err
			}
			return svc.FindMessageLocation(StringArg(args, "family"), message)
		},
	}))

	must(registry.Register(Tool{
		Name:        "triage_report",
		Description: "Render a markdown triage report for a stage's most recent run. Arguments: family (optional), stage (required).",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			stage, err := RequiredStringArg(args, "stage")
			if err != nil {
				return nil, err
			}
			return svc.BuildReport(StringArg(args, "family"), stage)
		},
	}))

	must(registry.Register(Tool{
		Name:        "file_tickets",
		Description: "File tracker tickets for a stage's failed scenarios, skipping failures that already have one. Arguments: family (optional), stage (required).",
		Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			stage, err := RequiredStringArg(args, "stage")
			if err != nil {
				return nil, err
			}
			return svc.FileTickets(ctx, StringArg(args, "family"), stage)
		},
	}))

	return registry
}
