package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("Root command should not be nil")
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	output := buf.String()

	if !strings.Contains(strings.ToLower(output), "logtriage") {
		t.Errorf("Help text should mention logtriage, got: %s", output)
	}
	if !strings.Contains(output, "triage") {
		t.Errorf("Help text should describe triage, got: %s", output)
	}
	if err != nil && !strings.Contains(err.Error(), "help requested") {
		t.Logf("Help command returned error (this is ok): %v", err)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "logtriage" {
		t.Errorf("Expected Use to be 'logtriage', got '%s'", cmd.Use)
	}

	want := []string{"failures", "summary", "causes", "report", "tickets", "tools"}
	have := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("Root command is missing subcommand %q", name)
		}
	}
}

func TestRootCommandConfigFlag(t *testing.T) {
	cmd := NewRootCommand()

	flag := cmd.PersistentFlags().Lookup("config")
	if flag == nil {
		t.Fatal("Root command should have a persistent --config flag")
	}
	if flag.DefValue != "logtriage.yaml" {
		t.Errorf("Expected default config path 'logtriage.yaml', got '%s'", flag.DefValue)
	}
}

func TestNewServiceMissingConfig(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"summary", "--config", "/nonexistent/logtriage.yaml"})
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))

	if err := cmd.Execute(); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}
