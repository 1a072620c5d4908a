// Package failures isolates the failures section of a stage log and binds
// error blocks to the scenario that produced them.
//
// The scan is a line-oriented state machine: Seeking until a "Failures:"
// marker, InFailureSection until a "Warnings:" marker, then Done. A
// "Warnings:" line terminates the scan unconditionally, wherever it
// appears.
package failures

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/harrison/logtriage/internal/rootcause"
)

// DefaultErrorMarker flags a line as the start of an error block. The
// producer emits a cross mark in front of failed steps; the marker is
// configurable because encodings of that glyph have varied across
// producers.
const DefaultErrorMarker = "✗"

const timestampPattern = `\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d{1,3})?Z?`

var (
	sectionStartRegex = regexp.MustCompile(`^` + timestampPattern + `\s+Failures:`)
	sectionEndRegex   = regexp.MustCompile(`^` + timestampPattern + `\s+Warnings:`)
	scenarioRegex     = regexp.MustCompile(`^(` + timestampPattern + `)\b.*Scenario:\s*(.+)$`)
	locationRegex     = regexp.MustCompile(`at\s+(\S+?):(\d+):(\d+)`)
)

// FailedScenario is one error block attributed to the scenario line that
// preceded it. Scenario is always non-empty; a floating error block with
// no preceding scenario is dropped.
type FailedScenario struct {
	Timestamp   string
	Scenario    string
	Description string

	// Extended fields, populated by ScanDetailed only.
	RootCause  string
	Category   rootcause.Category
	StackTrace []string
	FilePath   string
	Line       int
}

// Scanner runs the failure-section state machine over one file's text.
type Scanner struct {
	errorMarker string
}

// NewScanner creates a Scanner using the given error-marker token. An
// empty marker falls back to DefaultErrorMarker.
func NewScanner(errorMarker string) *Scanner {
	if errorMarker == "" {
		errorMarker = DefaultErrorMarker
	}
	return &Scanner{errorMarker: errorMarker}
}

// Scan returns the failed scenarios found in text, description only.
func (s *Scanner) Scan(text string) []FailedScenario {
	return s.scan(text, false)
}

// ScanDetailed additionally tags stack-trace lines, captures the first
// "at <file>:<line>:<col>" code location per block, and classifies the
// accumulated block text.
func (s *Scanner) ScanDetailed(text string) []FailedScenario {
	return s.scan(text, true)
}

type scanState int

const (
	stateSeeking scanState = iota
	stateInFailureSection
	stateDone
)

// scenarioRef is the current scenario context inside the failures section.
type scenarioRef struct {
	name      string
	timestamp string
}

// step is the accumulator threaded through the line fold. Each line
// produces a new step value; nothing is shared between iterations.
type step struct {
	state    scanState
	scenario *scenarioRef
	block    *blockAccum
	results  []FailedScenario
}

// blockAccum collects one error block while the machine looks ahead for
// the line that terminates it.
type blockAccum struct {
	scenario scenarioRef
	lines    []string
	stack    []string
	filePath string
	line     int
}

func (s *Scanner) scan(text string, detailed bool) []FailedScenario {
	cur := step{state: stateSeeking}
	for _, line := range strings.Split(text, "\n") {
		cur = s.advance(cur, line, detailed)
		if cur.state == stateDone {
			break
		}
	}
	// End of input terminates an open block the same way a marker would.
	if cur.state != stateDone && cur.block != nil {
		cur = emit(cur, detailed)
	}
	return cur.results
}

// advance applies one line to the machine. Anchors are checked in priority
// order: section end first (terminates unconditionally), then section
// start, then scenario markers, then error-block handling.
func (s *Scanner) advance(cur step, line string, detailed bool) step {
	if sectionEndRegex.MatchString(line) {
		if cur.block != nil {
			cur = emit(cur, detailed)
		}
		cur.state = stateDone
		return cur
	}

	switch cur.state {
	case stateSeeking:
		if sectionStartRegex.MatchString(line) {
			cur.state = stateInFailureSection
		}
		return cur

	case stateInFailureSection:
		if match := scenarioRegex.FindStringSubmatch(line); match != nil {
			// A scenario line ends any open block before taking effect.
			if cur.block != nil {
				cur = emit(cur, detailed)
			}
			cur.scenario = &scenarioRef{name: strings.TrimSpace(match[2]), timestamp: match[1]}
			return cur
		}
		if cur.block != nil {
			cur.block = cur.block.add(line, detailed)
			return cur
		}
		if cur.scenario != nil && strings.Contains(line, s.errorMarker) {
			block := &blockAccum{scenario: *cur.scenario}
			cur.block = block.add(line, detailed)
		}
		return cur
	}
	return cur
}

// add appends line to the block and, in detailed mode, records stack-trace
// lines and the first code location seen.
func (b *blockAccum) add(line string, detailed bool) *blockAccum {
	next := *b
	next.lines = append(next.lines, line)
	if !detailed {
		return &next
	}

	if strings.Contains(line, "at ") || strings.Contains(line, "Error:") {
		next.stack = append(next.stack, strings.TrimSpace(line))
		if next.filePath == "" {
			if match := locationRegex.FindStringSubmatch(line); match != nil {
				next.filePath = match[1]
				// The regex guarantees digits.
				next.line, _ = strconv.Atoi(match[2])
			}
		}
	}
	return &next
}

// emit converts the open block into a FailedScenario, clears the current
// scenario, and returns the updated step.
func emit(cur step, detailed bool) step {
	block := cur.block
	description := strings.TrimSpace(strings.Join(block.lines, "\n"))

	failed := FailedScenario{
		Timestamp:   block.scenario.timestamp,
		Scenario:    block.scenario.name,
		Description: description,
	}
	if detailed {
		result := rootcause.Classify(description)
		failed.Category = result.Category
		failed.RootCause = result.Explanation
		failed.StackTrace = block.stack
		failed.FilePath = block.filePath
		failed.Line = block.line
	}

	cur.results = append(cur.results, failed)
	cur.block = nil
	cur.scenario = nil
	return cur
}
