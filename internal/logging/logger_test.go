package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"mailsift/internal/logging"
	"mailsift/internal/services"
)

func TestNewJSONLoggerEmitsNormalizedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hello", logging.String("task_id", "abc"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if record["msg"] != "hello" {
		t.Fatalf("unexpected msg field: %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Fatalf("unexpected level field: %v", record["level"])
	}
	if record["task_id"] != "abc" {
		t.Fatalf("unexpected task_id field: %v", record["task_id"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsTaskFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithTaskID(t.Context(), "task-7")
	ctx = services.WithStage(ctx, "denoise")
	ctx = services.WithBatch(ctx, 2)

	logging.WithContext(ctx, logger).Info("stage started")

	line := buf.String()
	for _, want := range []string{`"task_id":"task-7"`, `"stage":"denoise"`, `"batch":2`} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %s: %s", want, line)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should not panic")
	if logger.Enabled(t.Context(), 0) {
		t.Fatal("nop logger should report disabled")
	}
}
