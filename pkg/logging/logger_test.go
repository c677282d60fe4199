package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("url", "http://example.com").Msg("test message")
	Debug().Msg("debug message")

	out := buf.String()
	for _, want := range []string{"test message", `"level":"info"`, `"url":"http://example.com"`, "debug message"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestInitLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Msg("hidden")
	Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}

func TestBadgerLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	l := NewBadgerLogger("cache")
	l.Warningf("value log %d\n", 3)
	l.Infof("compaction done\n")

	out := buf.String()
	if !strings.Contains(out, `"component":"cache"`) || !strings.Contains(out, "value log 3") {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, `\n"`) {
		t.Errorf("trailing newline was not trimmed: %s", out)
	}
	if !strings.Contains(out, "compaction done") {
		t.Errorf("info message missing: %s", out)
	}
}
