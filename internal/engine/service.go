// Package engine composes the selectors, extractors, and scanners into
// the named operations exposed by the CLI and the tool layer. Every
// operation is a full synchronous re-scan of the relevant files; no state
// is carried between calls.
package engine

import (
	"context"
	"fmt"
	"os"

	"github.com/harrison/logtriage/internal/config"
	"github.com/harrison/logtriage/internal/diag"
	"github.com/harrison/logtriage/internal/failures"
	"github.com/harrison/logtriage/internal/history"
	"github.com/harrison/logtriage/internal/logfiles"
	"github.com/harrison/logtriage/internal/logger"
	"github.com/harrison/logtriage/internal/records"
	"github.com/harrison/logtriage/internal/report"
	"github.com/harrison/logtriage/internal/rootcause"
	"github.com/harrison/logtriage/internal/summary"
	"github.com/harrison/logtriage/internal/tracker"
)

// Field names carried by generic error-log records.
const (
	errorIDField      = "ErrorId"
	errorMessageField = "Message"
)

// Service exposes the triage operations. It holds no mutable state
// beyond its injected collaborators and is safe for concurrent use.
type Service struct {
	cfg       *config.Config
	scanner   *failures.Scanner
	extractor *records.Extractor
	reports   *report.Builder
	sink      diag.Sink
	log       *logger.ConsoleLogger
	tracker   *tracker.Client
	history   *history.Store
}

// NewService validates cfg and wires the service. Configuration problems
// fail here, before any operation runs. The sink receives a structured
// event for every unexpected I/O failure; pass diag.Nop() to discard.
func NewService(cfg *config.Config, sink diag.Sink, log *logger.ConsoleLogger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if sink == nil {
		sink = diag.Nop()
	}
	if log == nil {
		log = logger.NewConsoleLogger(nil, "info")
	}

	extractor, err := records.NewExtractor(records.DefaultAnchor)
	if err != nil {
		return nil, fmt.Errorf("invalid record anchor: %w", err)
	}

	svc := &Service{
		cfg:       cfg,
		scanner:   failures.NewScanner(cfg.ErrorMarker),
		extractor: extractor,
		reports:   report.NewBuilder(),
		sink:      sink,
		log:       log,
	}

	if cfg.Tracker.Enabled {
		svc.tracker = tracker.NewClient(cfg.Tracker)
	}
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open ticket history: %w", err)
		}
		svc.history = store
	}
	return svc, nil
}

// Close releases the ticket history database, if open.
func (s *Service) Close() error {
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}

// fail records the error on the diagnostic sink and returns the generic
// operation failure surfaced to callers. Callers never see partial
// results alongside an error.
func (s *Service) fail(operation, detail string, err error) error {
	s.sink.Record(diag.NewEvent(operation, err, detail))
	s.log.Errorf("%s failed: %v", operation, err)
	return fmt.Errorf("%s failed: %w", operation, err)
}

// readStage reads the most recent log file for a stage within a family.
// A missing stage yields ok=false with no error.
func (s *Service) readStage(operation, familyName, stage string) (text string, desc *logfiles.Descriptor, ok bool, err error) {
	family, err := s.cfg.Family(familyName)
	if err != nil {
		return "", nil, false, err
	}
	desc, err = logfiles.MostRecent(family.Dir, stage)
	if err != nil {
		return "", nil, false, s.fail(operation, "stage="+stage, err)
	}
	if desc == nil {
		return "", nil, false, nil
	}
	data, err := os.ReadFile(desc.Path)
	if err != nil {
		return "", nil, false, s.fail(operation, "path="+desc.Path, err)
	}
	return string(data), desc, true, nil
}

// FailedScenarios scans the most recent file for the stage and returns
// its failed scenarios, descriptions only. A missing stage returns an
// empty list.
func (s *Service) FailedScenarios(familyName, stage string) ([]failures.FailedScenario, error) {
	text, _, ok, err := s.readStage("failed-scenarios", familyName, stage)
	if err != nil || !ok {
		return nil, err
	}
	return s.scanner.Scan(text), nil
}

// FailureDetails is the extended variant: stack traces, code locations,
// and root-cause classification.
func (s *Service) FailureDetails(familyName, stage string) ([]failures.FailedScenario, error) {
	text, _, ok, err := s.readStage("failure-details", familyName, stage)
	if err != nil || !ok {
		return nil, err
	}
	return s.scanner.ScanDetailed(text), nil
}

// ScenarioSummaries returns the pass/fail tally from each selected file
// in the family, most recent files first within each stage group.
func (s *Service) ScenarioSummaries(familyName string) ([]summary.ScenarioSummary, error) {
	const operation = "scenario-summaries"
	family, err := s.cfg.Family(familyName)
	if err != nil {
		return nil, err
	}

	selected, err := logfiles.SelectGrouped(family.Dir, family.TakeLast)
	if err != nil {
		return nil, s.fail(operation, "family="+family.Name, err)
	}

	var out []summary.ScenarioSummary
	for _, desc := range selected {
		data, err := os.ReadFile(desc.Path)
		if err != nil {
			return nil, s.fail(operation, "path="+desc.Path, err)
		}
		if sum := summary.FromText(desc.GroupKey, string(data), desc.Token()); sum != nil {
			out = append(out, *sum)
		}
	}
	return out, nil
}

// ErrorDescriptionCounts builds the description histogram over the
// stage's failed scenarios.
func (s *Service) ErrorDescriptionCounts(familyName, stage string) ([]summary.DescriptionCount, error) {
	details, err := s.FailureDetails(familyName, stage)
	if err != nil {
		return nil, err
	}
	return summary.CountByDescription(details), nil
}

// ErrorRootCauses scans the supplementary rotated error logs (selected
// by modification time) and returns one entry per record carrying an
// explicit error identifier.
func (s *Service) ErrorRootCauses() ([]summary.ErrorRootCauseInfo, error) {
	const operation = "error-root-causes"
	if s.cfg.ErrorLogDir == "" {
		return nil, nil
	}

	paths, err := logfiles.SelectByModTime(s.cfg.ErrorLogDir, s.cfg.ErrorLogCount)
	if err != nil {
		return nil, s.fail(operation, "dir="+s.cfg.ErrorLogDir, err)
	}

	classify := func(text string) string {
		return rootcause.Classify(text).Explanation
	}
	var out []summary.ErrorRootCauseInfo
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, s.fail(operation, "path="+path, err)
		}
		recs := s.extractor.Split(string(data))
		out = append(out, summary.RootCausesFromRecords(recs, errorIDField, errorMessageField, classify)...)
	}
	return out, nil
}

// FindMessageLocation searches the family's selected files for the first
// line containing message. Returns nil when not found.
func (s *Service) FindMessageLocation(familyName, message string) (*summary.Location, error) {
	const operation = "find-message"
	family, err := s.cfg.Family(familyName)
	if err != nil {
		return nil, err
	}
	selected, err := logfiles.SelectGrouped(family.Dir, family.TakeLast)
	if err != nil {
		return nil, s.fail(operation, "family="+family.Name, err)
	}
	paths := make([]string, len(selected))
	for i, desc := range selected {
		paths[i] = desc.Path
	}
	loc, err := summary.FindFirstLocation(paths, message)
	if err != nil {
		return nil, s.fail(operation, "family="+family.Name, err)
	}
	return loc, nil
}

// BuildReport renders the markdown triage report for a stage.
func (s *Service) BuildReport(familyName, stage string) (string, error) {
	details, err := s.FailureDetails(familyName, stage)
	if err != nil {
		return "", err
	}
	return s.reports.Render(stage, details), nil
}

// FiledTicket reports one outcome of FileTickets.
type FiledTicket struct {
	Scenario string
	Key      string
	// Existing is true when the ticket was already on record and no new
	// ticket was filed.
	Existing bool
}

// FileTickets files one tracker ticket per failed scenario in the
// stage's most recent run, skipping failures whose fingerprint already
// has a ticket on record. New tickets join the active sprint when one
// exists.
func (s *Service) FileTickets(ctx context.Context, familyName, stage string) ([]FiledTicket, error) {
	const operation = "file-tickets"
	if s.tracker == nil {
		return nil, fmt.Errorf("tracker is not enabled in configuration")
	}

	details, err := s.FailureDetails(familyName, stage)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}

	sprint, err := s.tracker.ActiveSprint(ctx)
	if err != nil {
		return nil, s.fail(operation, "stage="+stage, err)
	}

	var out []FiledTicket
	for _, failure := range details {
		fingerprint := history.Fingerprint(failure.Scenario, string(failure.Category))
		if s.history != nil {
			key, found, err := s.history.FindTicket(fingerprint)
			if err != nil {
				return nil, s.fail(operation, "scenario="+failure.Scenario, err)
			}
			if found {
				s.log.Infof("scenario %q already tracked as %s", failure.Scenario, key)
				out = append(out, FiledTicket{Scenario: failure.Scenario, Key: key, Existing: true})
				continue
			}
		}

		// The ticket summary reuses the rendered report's title so the
		// ticket and its description always carry the same stage label.
		description := s.reports.Render(stage, []failures.FailedScenario{failure})
		created, err := s.tracker.CreateTicket(ctx, tracker.Ticket{
			Summary:     fmt.Sprintf("%s: %s (%s)", s.reports.Title(description), failure.Scenario, failure.Category),
			Description: description,
			Labels:      []string{"logtriage"},
		})
		if err != nil {
			return nil, s.fail(operation, "scenario="+failure.Scenario, err)
		}

		if sprint != nil {
			if err := s.tracker.AddToSprint(ctx, sprint.ID, created.Key); err != nil {
				return nil, s.fail(operation, "ticket="+created.Key, err)
			}
		}
		if s.history != nil {
			if err := s.history.RecordTicket(fingerprint, created.Key, failure.Scenario, string(failure.Category)); err != nil {
				return nil, s.fail(operation, "ticket="+created.Key, err)
			}
		}

		s.log.Infof("filed %s for scenario %q", created.Key, failure.Scenario)
		out = append(out, FiledTicket{Scenario: failure.Scenario, Key: created.Key})
	}
	return out, nil
}
