package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func newBufferedLogger(buf *bytes.Buffer) *DefaultLogger {
	return &DefaultLogger{
		stdoutLogger: log.New(buf, "", 0),
		stderrLogger: log.New(buf, "", 0),
		level:        InfoLevel,
		fields:       make(Fields),
		useColors:    false,
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{FatalLevel, "FATAL"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestDefaultLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug message logged below level: %q", buf.String())
	}

	logger.SetLevel(DebugLevel)
	logger.Debug("visible")
	if !strings.Contains(buf.String(), "[DEBUG] visible") {
		t.Errorf("missing debug line in %q", buf.String())
	}
}

func TestDefaultLoggerFormatsFieldsAndErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	logger.Info("analyzed", Fields{"charts": 3})
	out := buf.String()
	if !strings.Contains(out, "[INFO] analyzed") || !strings.Contains(out, "charts:3") {
		t.Errorf("unexpected info line: %q", out)
	}

	buf.Reset()
	logger.Error(errors.New("boom"), "failed")
	out = buf.String()
	if !strings.Contains(out, "[ERROR] failed: boom") {
		t.Errorf("unexpected error line: %q", out)
	}
}

func TestWithFieldsMerges(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferedLogger(&buf)

	child := logger.WithFields(Fields{"file": "song.sm"})
	child.Info("parsed", Fields{"charts": 2})
	out := buf.String()
	if !strings.Contains(out, "file:song.sm") || !strings.Contains(out, "charts:2") {
		t.Errorf("merged fields missing from %q", out)
	}

	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "file:") {
		t.Errorf("parent logger inherited child fields: %q", buf.String())
	}
}

func TestSetGlobalLoggerNilFallsBackToNoOp(t *testing.T) {
	orig := GetGlobalLogger()
	defer SetGlobalLogger(orig)

	SetGlobalLogger(nil)
	if _, ok := GetGlobalLogger().(*NoOpLogger); !ok {
		t.Errorf("global logger = %T, want *NoOpLogger", GetGlobalLogger())
	}
	// Must not panic.
	Debug("noop")
	Error(errors.New("x"), "noop")
}
