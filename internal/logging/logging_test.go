package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		v     int
		quiet bool
		want  log.Level
	}{
		{0, false, log.WarnLevel},
		{1, false, log.InfoLevel},
		{2, false, log.DebugLevel},
		{5, false, log.DebugLevel},
		{2, true, log.ErrorLevel},
	}
	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.v, tt.quiet); got != tt.want {
			t.Errorf("LevelFromVerbosity(%d, %v) = %v, want %v", tt.v, tt.quiet, got, tt.want)
		}
	}
}

func TestMetricsChannel(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := New(Options{Level: log.DebugLevel, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	Metrics(l).Info("solve", "points", 42)
	out := buf.String()
	if !strings.Contains(out, MetricsPrefix) || !strings.Contains(out, "points=42") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Options{Level: log.WarnLevel, Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("records below warn were written: %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("warn record missing")
	}
}

func TestJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odesketch.log")
	l, closer, err := New(Options{Level: log.InfoLevel, File: path, JSON: true})
	if err != nil {
		t.Fatal(err)
	}
	Metrics(l).Info("solve", "accepted", 3)
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	if rec["prefix"] != MetricsPrefix || rec["msg"] != "solve" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("dropped")
}
