package logging

import (
	"log/slog"
	"testing"

	"github.com/avollmer/sentra/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", "unknown"} {
		t.Run(format, func(t *testing.T) {
			log := New(config.Logging{Level: "info", Format: format, Output: "stdout"}, "test")
			if log == nil || log.Logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestWith_ReturnsIndependentLogger(t *testing.T) {
	base := Default()
	child := base.With("component", "test")

	if child == base {
		t.Error("With() should return a new logger")
	}
	if child.Logger == nil {
		t.Error("child logger not initialised")
	}
}
