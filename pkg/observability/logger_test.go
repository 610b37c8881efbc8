package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("parsing log line %q: %v", line, err)
	}
	return entry
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("document_id", "doc-1").Info("decision recorded")

	entry := logLine(t, &buf)
	if entry["msg"] != "decision recorded" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["document_id"] != "doc-1" {
		t.Errorf("document_id = %v", entry["document_id"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged below warn level: %s", buf.String())
	}

	logger.Warn("should appear")
	if buf.Len() == 0 {
		t.Error("warn message was dropped")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(ErrorLevel, &buf)

	logger.WithError(errors.New("connection refused")).Error("db unavailable")

	entry := logLine(t, &buf)
	if entry["error"] != "connection refused" {
		t.Errorf("error = %v", entry["error"])
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DebugLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"bogus":   InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-42")
	if got := GetRequestID(ctx); got != "req-42" {
		t.Errorf("GetRequestID = %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID on empty context = %q", got)
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext should never return nil")
	}

	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)
	ctx := WithLogger(context.Background(), logger)
	FromContext(ctx).Info("via context")
	if buf.Len() == 0 {
		t.Error("context logger was not used")
	}
}
