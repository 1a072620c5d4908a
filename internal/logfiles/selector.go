// Package logfiles selects candidate log files from a directory by naming
// convention and recency.
//
// Rotated stage logs follow the grammar <groupKey>@@<YYYYMMDD><HHMM><SS>
// (extension stripped before matching). Files whose names do not conform,
// or whose embedded date does not parse, are silently ignored.
package logfiles

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// nameRegex matches the rotation grammar after the extension is stripped:
// group key, "@@" separator, 8-digit date, 4-digit time, 2-digit sequence.
var nameRegex = regexp.MustCompile(`^(.+)@@(\d{8})(\d{4})(\d{2})$`)

// Descriptor describes one log file matched by the rotation grammar.
// Descriptors are created during a directory scan and never mutated.
type Descriptor struct {
	// Path is the absolute path of the file.
	Path string
	// GroupKey identifies the stage/run family the file belongs to.
	GroupKey string
	// Date is the parsed YYYYMMDD portion of the filename.
	Date time.Time
	// Time is the zero-padded 4-digit HHMM portion.
	Time string
	// Sequence is the zero-padded 2-digit rotation sequence.
	Sequence string
}

// Token returns the combined 14-digit time token from the filename.
func (d Descriptor) Token() string {
	return d.Date.Format("20060102") + d.Time + d.Sequence
}

// newer reports whether d sorts before other in descending recency order:
// date first, then the time field, then the rotation sequence.
func (d Descriptor) newer(other Descriptor) bool {
	if !d.Date.Equal(other.Date) {
		return d.Date.After(other.Date)
	}
	if d.Time != other.Time {
		return d.Time > other.Time
	}
	return d.Sequence > other.Sequence
}

// parseName parses a filename (with or without extension) against the
// rotation grammar. Returns false for non-conforming names and for names
// whose date portion is not a real calendar date.
func parseName(dir, name string) (Descriptor, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	match := nameRegex.FindStringSubmatch(base)
	if match == nil {
		return Descriptor{}, false
	}
	date, err := time.Parse("20060102", match[2])
	if err != nil {
		return Descriptor{}, false
	}
	return Descriptor{
		Path:     filepath.Join(dir, name),
		GroupKey: match[1],
		Date:     date,
		Time:     match[3],
		Sequence: match[4],
	}, true
}

// SelectGrouped lists dir, groups conforming files by group key, and keeps
// the takeLast most recent files per group, ordered newest first within
// each group. Groups appear in ascending key order so the result is
// deterministic for identical directory contents.
func SelectGrouped(dir string, takeLast int) ([]Descriptor, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	groups := make(map[string][]Descriptor)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		desc, ok := parseName(dir, entry.Name())
		if !ok {
			continue
		}
		groups[desc.GroupKey] = append(groups[desc.GroupKey], desc)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var selected []Descriptor
	for _, key := range keys {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool { return group[i].newer(group[j]) })
		if takeLast > 0 && len(group) > takeLast {
			group = group[:takeLast]
		}
		selected = append(selected, group...)
	}
	return selected, nil
}

// MostRecent returns the newest file for the given group key, or nil when
// the group has no conforming files. A missing group is not an error.
func MostRecent(dir, groupKey string) (*Descriptor, error) {
	selected, err := SelectGrouped(dir, 1)
	if err != nil {
		return nil, err
	}
	for i := range selected {
		if selected[i].GroupKey == groupKey {
			return &selected[i], nil
		}
	}
	return nil, nil
}

// SelectByModTime lists dir and returns up to max file paths ordered by
// modification time, newest first. Filename content is ignored; this
// serves rotated error logs that carry no embedded timestamp.
func SelectByModTime(dir string, max int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var files []fileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File disappeared between listing and stat; skip it.
			continue
		}
		files = append(files, fileInfo{filepath.Join(dir, entry.Name()), info.ModTime()})
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].modTime.After(files[j].modTime) })
	if max > 0 && len(files) > max {
		files = files[:max]
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
