// Package diag is the side-channel diagnostic sink: operations report
// unexpected failures here without surfacing partial results to callers.
// Sinks are injected so tests can assert on emitted events without
// touching the filesystem.
package diag

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Event is one structured diagnostic entry.
type Event struct {
	Time      time.Time
	Operation string
	Cause     string
	Detail    string
}

// Sink accepts diagnostic events. Implementations must be safe for
// concurrent use and must never fail the caller; recording is best-effort.
type Sink interface {
	Record(event Event)
}

// NewEvent builds an event for the given operation and error, stamped now.
func NewEvent(operation string, err error, detail string) Event {
	cause := ""
	if err != nil {
		cause = err.Error()
	}
	return Event{
		Time:      time.Now().UTC(),
		Operation: operation,
		Cause:     cause,
		Detail:    detail,
	}
}

// FileSink appends events to a diagnostic log file, one line per event.
// Appends are serialized with an exclusive flock so concurrent processes
// sharing the file do not interleave lines.
type FileSink struct {
	path string
	lock *flock.Flock
}

// NewFileSink creates a sink appending to path. The log's parent
// directory is created if missing, since the default config points into
// a dotdir that may not exist yet. The lock file sits next to the log
// file.
func NewFileSink(path string) *FileSink {
	os.MkdirAll(filepath.Dir(path), 0755)
	return &FileSink{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Record appends the event. Errors are swallowed: the diagnostic log is
// best-effort and must never mask the original failure.
func (s *FileSink) Record(event Event) {
	if err := s.lock.Lock(); err != nil {
		return
	}
	defer s.lock.Unlock()

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer file.Close()

	fmt.Fprintf(file, "%s %s: %s", event.Time.Format(time.RFC3339), event.Operation, event.Cause)
	if event.Detail != "" {
		fmt.Fprintf(file, " (%s)", event.Detail)
	}
	fmt.Fprintln(file)
}

// MemorySink collects events in memory for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record stores the event.
func (s *MemorySink) Record(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// nopSink discards all events.
type nopSink struct{}

func (nopSink) Record(Event) {}

// Nop returns a sink that discards everything.
func Nop() Sink {
	return nopSink{}
}
