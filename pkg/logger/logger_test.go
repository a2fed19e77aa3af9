package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(t *testing.T, level Level) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	log, err := NewLogger(&Config{
		Level:            level,
		Format:           JSONFormat,
		Output:           WriterOutput,
		Writer:           buf,
		DisableTimestamp: true,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log, buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := make(map[string]interface{})
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
	}{
		{name: "default", config: DefaultConfig(), wantError: false},
		{name: "debug with caller", config: &Config{Level: DebugLevel, Format: TextFormat, Output: StderrOutput, CallerInfo: true}, wantError: false},
		{name: "bad level", config: &Config{Level: "trace", Format: TextFormat, Output: StderrOutput}, wantError: true},
		{name: "bad format", config: &Config{Level: InfoLevel, Format: "xml", Output: StderrOutput}, wantError: true},
		{name: "file without path", config: &Config{Level: InfoLevel, Format: TextFormat, Output: FileOutput}, wantError: true},
		{name: "writer without writer", config: &Config{Level: InfoLevel, Format: TextFormat, Output: WriterOutput}, wantError: true},
		{name: "unknown output", config: &Config{Level: InfoLevel, Format: TextFormat, Output: "syslog"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestFieldsAccumulate(t *testing.T) {
	log, buf := newBufferLogger(t, InfoLevel)

	log.WithComponent("pipeline").
		WithRun("abc").
		WithFields(Fields{"rows": 3}).
		WithError(errors.New("boom")).
		Info("hello")

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry["component"] != "pipeline" {
		t.Errorf("expected component field, got %v", entry["component"])
	}
	if entry["run_id"] != "abc" {
		t.Errorf("expected run_id field, got %v", entry["run_id"])
	}
	if entry["rows"] != float64(3) {
		t.Errorf("expected rows field, got %v", entry["rows"])
	}
	if entry["error"] != "boom" {
		t.Errorf("expected error field, got %v", entry["error"])
	}
	if entry["msg"] != "hello" {
		t.Errorf("expected message, got %v", entry["msg"])
	}
}

func TestLevelFiltering(t *testing.T) {
	log, buf := newBufferLogger(t, WarnLevel)

	log.Info("ignored")
	log.Debugf("ignored %d", 1)
	log.Warnf("kept %d", 2)

	entries := decodeLines(t, buf)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["msg"] != "kept 2" {
		t.Errorf("unexpected message %v", entries[0]["msg"])
	}
}

func TestStageTracker(t *testing.T) {
	log, buf := newBufferLogger(t, InfoLevel)

	tracker := NewStageTracker("clean", log)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.clock = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	stats := tracker.Begin("product_filter", 10).End(7)
	if stats.Dropped() != 3 {
		t.Errorf("expected 3 dropped rows, got %d", stats.Dropped())
	}
	if stats.Duration != time.Second {
		t.Errorf("expected 1s duration, got %v", stats.Duration)
	}

	failed := tracker.Begin("projection", 7).Fail(errors.New("missing column"))
	if failed.Err != "missing column" {
		t.Errorf("expected error to be recorded, got %q", failed.Err)
	}

	stages := tracker.Stages()
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages[0].Name != "product_filter" || stages[1].Name != "projection" {
		t.Errorf("unexpected stage order: %v", stages)
	}

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 info/error entries, got %d", len(entries))
	}
	if entries[0]["stage"] != "product_filter" || entries[0]["dropped"] != float64(3) {
		t.Errorf("unexpected stage entry: %v", entries[0])
	}
	if entries[1]["level"] != "error" {
		t.Errorf("expected failed stage to log at error level, got %v", entries[1]["level"])
	}
}

func TestTimedOperation(t *testing.T) {
	log, buf := newBufferLogger(t, InfoLevel)

	if err := TimedOperation("write", log, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := errors.New("disk full")
	if err := TimedOperation("write", log, func() error { return want }); err != want {
		t.Fatalf("expected %v, got %v", want, err)
	}

	entries := decodeLines(t, buf)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["status"] != "success" || entries[1]["status"] != "error" {
		t.Errorf("unexpected statuses: %v / %v", entries[0]["status"], entries[1]["status"])
	}
}
