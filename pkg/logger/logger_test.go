package logger

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pagelift/backend/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"warning alias", "warning", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"fatal level", "fatal", zerolog.FatalLevel},
		{"panic level", "panic", zerolog.PanicLevel},
		{"uppercase", "DEBUG", zerolog.DebugLevel},
		{"unknown defaults to info", "verbose", zerolog.InfoLevel},
		{"empty defaults to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLogLevel(tt.level); got != tt.expected {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.level, got, tt.expected)
			}
		})
	}
}

func TestNew_SetsGlobalLevel(t *testing.T) {
	original := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(original)

	cfg := &config.Config{
		Env:       "test",
		LogLevel:  "warn",
		LogFormat: "json",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New() returned nil")
	}

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("global level = %v, want %v", zerolog.GlobalLevel(), zerolog.WarnLevel)
	}
}

func TestWithField_ReturnsNewLogger(t *testing.T) {
	log := NewNop()

	child := log.WithField("component", "scoring")
	if child == nil {
		t.Fatal("WithField returned nil")
	}
	if child == log {
		t.Error("WithField should return a new logger instance")
	}

	// Derived loggers must be safe to use.
	child.Info("field logger works")
	child.WithError(errors.New("boom")).Error("error logger works")
	child.WithFields(map[string]interface{}{"a": 1, "b": "two"}).Debug("fields logger works")
}
