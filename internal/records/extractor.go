// Package records splits raw log text into timestamped blocks and extracts
// named key=value fields from block bodies.
package records

import (
	"regexp"
	"strings"
	"time"
)

// NotPresent is returned by field lookups when the field is absent. Using a
// sentinel string keeps absent fields distinguishable from empty values.
const NotPresent = "not present"

// DefaultAnchor recognizes a line starting with an ISO-8601-like timestamp
// followed by a bracketed severity tag. The two capture groups are the
// timestamp and the severity level.
const DefaultAnchor = `(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d{1,3})?Z?)\s+\[(\w+)\]`

// timestampLayouts are tried in order when parsing a block's anchor
// timestamp. Blocks that parse under none of them are skipped.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// fieldLineRegex recognizes a line that introduces a new field, used to
// terminate multi-line field values.
var fieldLineRegex = regexp.MustCompile(`^\w+=`)

// Record is one log entry: the anchor timestamp and level plus the raw
// block text running up to the next anchor. Fields holds any values
// requested at split time; absent fields map to NotPresent.
type Record struct {
	Timestamp time.Time
	Level     string
	Text      string
	Fields    map[string]string
}

// Extractor splits raw text into records using a compiled anchor pattern.
type Extractor struct {
	anchor *regexp.Regexp
}

// NewExtractor compiles the anchor pattern. The pattern is anchored to line
// starts and evaluated across the whole text, because a block's body spans
// multiple lines. The pattern must expose two capture groups: timestamp
// and level.
func NewExtractor(anchor string) (*Extractor, error) {
	re, err := regexp.Compile(`(?m)^` + anchor)
	if err != nil {
		return nil, err
	}
	return &Extractor{anchor: re}, nil
}

// Split produces the maximal non-overlapping set of blocks in text, each
// running from one anchor to just before the next anchor (or end of text).
// Blocks whose timestamp fails to parse are skipped, not reported; parsing
// continues with the next block. When fieldNames are given, each record's
// Fields map is populated via Field.
func (e *Extractor) Split(text string, fieldNames ...string) []Record {
	matches := e.anchor.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return nil
	}

	var out []Record
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		block := strings.TrimRight(text[m[0]:end], "\n")

		ts, ok := parseTimestamp(text[m[2]:m[3]])
		if !ok {
			continue
		}

		rec := Record{
			Timestamp: ts,
			Level:     text[m[4]:m[5]],
			Text:      block,
		}
		if len(fieldNames) > 0 {
			rec.Fields = make(map[string]string, len(fieldNames))
			for _, name := range fieldNames {
				rec.Fields[name] = Field(block, name)
			}
		}
		out = append(out, rec)
	}
	return out
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// Field returns the trimmed value following "name=" in block, terminated at
// end of line. Missing field returns NotPresent; lookup never fails.
func Field(block, name string) string {
	value, ok := findField(block, name)
	if !ok {
		return NotPresent
	}
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

// MultilineField returns the trimmed value following "name=", consuming
// subsequent lines until the next recognized field line ("Key=...") or the
// end of the block. Missing field returns NotPresent.
func MultilineField(block, name string) string {
	value, ok := findField(block, name)
	if !ok {
		return NotPresent
	}

	lines := strings.Split(value, "\n")
	kept := lines[:1]
	for _, line := range lines[1:] {
		if fieldLineRegex.MatchString(line) {
			break
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// findField locates "name=" at a line start or after whitespace and returns
// the remainder of the block from the first character of the value.
func findField(block, name string) (string, bool) {
	marker := name + "="
	for offset := 0; offset < len(block); {
		idx := strings.Index(block[offset:], marker)
		if idx < 0 {
			return "", false
		}
		abs := offset + idx
		// Accept only markers at a line start or preceded by whitespace so
		// "SessionId=" does not satisfy a lookup for "Id".
		if abs == 0 || block[abs-1] == '\n' || block[abs-1] == ' ' || block[abs-1] == '\t' {
			return block[abs+len(marker):], true
		}
		offset = abs + len(marker)
	}
	return "", false
}
