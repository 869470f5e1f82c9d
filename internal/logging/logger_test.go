package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	scoped := NewComponentLogger(logger, "catalog")
	scoped.Info("fetched formats", Int("count", 12), String("id", "dQw4w9WgXcQ"))

	line := buf.String()
	if !strings.Contains(line, "INFO catalog: fetched formats") {
		t.Fatalf("unexpected console line: %q", line)
	}
	if !strings.Contains(line, "count=12") || !strings.Contains(line, "id=dQw4w9WgXcQ") {
		t.Fatalf("attrs missing from line: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("rename failed", Error(errors.New("permission denied")))
	if !strings.Contains(buf.String(), `error="permission denied"`) {
		t.Fatalf("expected quoted error value, got %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record leaked through warn level: %q", buf.String())
	}
	logger.Warn("kept")
	if !strings.Contains(buf.String(), "WARN kept") {
		t.Fatalf("warn record missing: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New(Options{Format: "yaml", Writer: &buf}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
