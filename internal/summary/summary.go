// Package summary provides stateless groupings over already-extracted
// records: pass/fail tallies, description histograms, and first-location
// lookups. Every result is recomputed on each call.
package summary

import (
	"bufio"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/harrison/logtriage/internal/failures"
	"github.com/harrison/logtriage/internal/records"
)

// ScenarioSummary is the pass/fail tally for one stage run.
type ScenarioSummary struct {
	Stage    string
	Datetime string
	Passed   int
	Failed   int
	Total    int
}

// ErrorRootCauseInfo pairs an explicit error identifier with its message
// and classified root cause.
type ErrorRootCauseInfo struct {
	ErrorID   string
	Message   string
	RootCause string
}

// DescriptionCount is one histogram bucket: a description (or, when the
// description is absent, the record's type) and its occurrence count.
type DescriptionCount struct {
	Description string
	Count       int
}

// Location is the first place a message substring was found.
type Location struct {
	File string
	Line int
}

var (
	countsRegex = regexp.MustCompile(`(\d+)\s+scenarios?\s+\(([^)]*)\)`)
	failedRegex = regexp.MustCompile(`(\d+)\s+failed`)
	passedRegex = regexp.MustCompile(`(\d+)\s+passed`)
)

// ParseCounts parses a scenario-count line such as
// "2025-09-17T10:00:00.000Z 12 scenarios (3 failed, 9 passed)". Either
// count may be absent in the source; an absent count is zero. Returns
// ok=false when the line carries no scenario tally at all.
func ParseCounts(line string) (total, failed, passed int, ok bool) {
	match := countsRegex.FindStringSubmatch(line)
	if match == nil {
		return 0, 0, 0, false
	}
	total, _ = strconv.Atoi(match[1])
	if m := failedRegex.FindStringSubmatch(match[2]); m != nil {
		failed, _ = strconv.Atoi(m[1])
	}
	if m := passedRegex.FindStringSubmatch(match[2]); m != nil {
		passed, _ = strconv.Atoi(m[1])
	}
	return total, failed, passed, true
}

// FromText scans one file's text for its scenario-count line and returns
// the summary for the given stage, or nil when the file has none. The
// datetime comes from the counts line's timestamp prefix when present,
// otherwise fallback is used.
func FromText(stage, text, fallback string) *ScenarioSummary {
	for _, line := range strings.Split(text, "\n") {
		total, failed, passed, ok := ParseCounts(line)
		if !ok {
			continue
		}
		datetime := fallback
		if fields := strings.Fields(line); len(fields) > 0 && looksLikeTimestamp(fields[0]) {
			datetime = fields[0]
		}
		return &ScenarioSummary{
			Stage:    stage,
			Datetime: datetime,
			Passed:   passed,
			Failed:   failed,
			Total:    total,
		}
	}
	return nil
}

var timestampRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

func looksLikeTimestamp(s string) bool {
	return timestampRegex.MatchString(s)
}

// CountByDescription builds a description→count histogram over failed
// scenarios, sorted by count descending. A failure with an empty
// description is bucketed under its category instead. Ties keep the order
// buckets first appeared in the input.
func CountByDescription(items []failures.FailedScenario) []DescriptionCount {
	counts := make(map[string]int)
	var order []string
	for _, item := range items {
		key := item.Description
		if key == "" {
			key = string(item.Category)
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	out := make([]DescriptionCount, 0, len(order))
	for _, key := range order {
		out = append(out, DescriptionCount{Description: key, Count: counts[key]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// RootCausesFromRecords returns one ErrorRootCauseInfo per record that
// carries a non-absent value for idField. The message comes from
// messageField (multi-line) and the root cause from the classifier via
// the supplied classify function.
func RootCausesFromRecords(recs []records.Record, idField, messageField string, classify func(string) string) []ErrorRootCauseInfo {
	var out []ErrorRootCauseInfo
	for _, rec := range recs {
		id := records.Field(rec.Text, idField)
		if id == records.NotPresent {
			continue
		}
		message := records.MultilineField(rec.Text, messageField)
		out = append(out, ErrorRootCauseInfo{
			ErrorID:   id,
			Message:   message,
			RootCause: classify(rec.Text),
		})
	}
	return out
}

// FindFirstLocation searches the given files in order for the first line
// containing substr and returns its file and 1-based line number. Returns
// nil when no file contains the substring. A file that cannot be read
// fails the whole search.
func FindFirstLocation(paths []string, substr string) (*Location, error) {
	for _, path := range paths {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if strings.Contains(scanner.Text(), substr) {
				file.Close()
				return &Location{File: path, Line: lineNo}, nil
			}
		}
		err = scanner.Err()
		file.Close()
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}
