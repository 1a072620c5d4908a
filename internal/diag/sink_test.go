package diag

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent("scan", errors.New("boom"), "stage=login")
	if event.Operation != "scan" {
		t.Errorf("expected operation scan, got %q", event.Operation)
	}
	if event.Cause != "boom" {
		t.Errorf("expected cause boom, got %q", event.Cause)
	}
	if event.Time.IsZero() {
		t.Error("expected a timestamp")
	}

	if got := NewEvent("scan", nil, ""); got.Cause != "" {
		t.Errorf("expected empty cause for nil error, got %q", got.Cause)
	}
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagnostics.log")
	sink := NewFileSink(path)

	sink.Record(NewEvent("scan", errors.New("directory missing"), "stage=login"))
	sink.Record(NewEvent("summary", errors.New("unreadable"), ""))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read diagnostic log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "scan: directory missing") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[0], "stage=login") {
		t.Errorf("expected detail in first line %q", lines[0])
	}
}

func TestFileSinkCreatesParentDirectory(t *testing.T) {
	// The default config points the log into .logtriage/, which does not
	// exist on first run.
	path := filepath.Join(t.TempDir(), ".logtriage", "diagnostics.log")
	sink := NewFileSink(path)

	sink.Record(NewEvent("scan", errors.New("boom"), "stage=login"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("diagnostic log was never written: %v", err)
	}
	if !strings.Contains(string(data), "scan: boom") {
		t.Errorf("unexpected log contents %q", string(data))
	}
}

func TestFileSinkSwallowsErrors(t *testing.T) {
	// A sink pointed at an impossible path (the parent is a regular file)
	// must not panic or fail.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	sink := NewFileSink(filepath.Join(blocker, "diag.log"))
	sink.Record(NewEvent("scan", errors.New("boom"), ""))
}

func TestMemorySink(t *testing.T) {
	sink := NewMemorySink()
	sink.Record(NewEvent("scan", errors.New("boom"), ""))

	events := sink.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Operation != "scan" {
		t.Errorf("unexpected operation %q", events[0].Operation)
	}

	// Events returns a copy.
	events[0].Operation = "mutated"
	if sink.Events()[0].Operation != "scan" {
		t.Error("Events must return a copy")
	}
}

func TestNop(t *testing.T) {
	Nop().Record(NewEvent("scan", nil, ""))
}
