package common

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppLogger_SetLevel(t *testing.T) {
	logger := &AppLogger{
		level: LevelInfo,
	}

	logger.SetLevel(LevelDebug)
	if logger.level != LevelDebug {
		t.Errorf("SetLevel did not update level, got %v, want %v", logger.level, LevelDebug)
	}
}

func TestAppLogger_LogFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := &AppLogger{
		level:  LevelWarn,
		output: &buf,
		logger: log.New(&buf, "", 0),
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message should have been filtered")
	}
	if strings.Contains(out, "info message") {
		t.Error("info message should have been filtered")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message should have been logged")
	}
	if !strings.Contains(out, "error message") {
		t.Error("error message should have been logged")
	}
}

func TestAppLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer

	logger := &AppLogger{
		level:  LevelInfo,
		output: &buf,
		logger: log.New(&buf, "", 0),
	}

	logger.Info("resolved backend: %s", "kernel")

	out := buf.String()
	if !strings.Contains(out, "resolved backend: kernel") {
		t.Errorf("formatted message missing, got: %q", out)
	}
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("level tag missing, got: %q", out)
	}
}
