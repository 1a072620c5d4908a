package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleLoggerFiltering(t *testing.T) {
	t.Run("filters below configured level", func(t *testing.T) {
		var buf bytes.Buffer
		cl := NewConsoleLogger(&buf, "warn")

		cl.Debugf("debug message")
		cl.Infof("info message")
		cl.Warnf("warn message")
		cl.Errorf("error message")

		out := buf.String()
		if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
			t.Errorf("expected debug/info to be filtered, got %q", out)
		}
		if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
			t.Errorf("expected warn/error to pass, got %q", out)
		}
	})

	t.Run("invalid level defaults to info", func(t *testing.T) {
		var buf bytes.Buffer
		cl := NewConsoleLogger(&buf, "bogus")

		cl.Debugf("hidden")
		cl.Infof("shown")

		out := buf.String()
		if strings.Contains(out, "hidden") {
			t.Errorf("expected debug filtered at default level, got %q", out)
		}
		if !strings.Contains(out, "shown") {
			t.Errorf("expected info message, got %q", out)
		}
	})

	t.Run("nil writer discards silently", func(t *testing.T) {
		cl := NewConsoleLogger(nil, "info")
		cl.Errorf("must not panic")
	})
}

func TestConsoleLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	cl := NewConsoleLogger(&buf, "info")

	cl.Infof("selected %d files", 3)

	out := buf.String()
	if !strings.Contains(out, "[INFO] selected 3 files") {
		t.Errorf("unexpected format %q", out)
	}
	// [HH:MM:SS] prefix.
	if !strings.HasPrefix(out, "[") || len(out) < 11 || out[9] != ']' {
		t.Errorf("expected timestamp prefix, got %q", out)
	}
}
