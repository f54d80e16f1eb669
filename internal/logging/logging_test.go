package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestInitJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger := initWith(&buf, "feed-loader", "true", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "feed", "drop")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"service":"feed-loader"`) {
		t.Fatalf("unexpected JSON output: %s", out)
	}
}

func TestInitConsole(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	initWith(&buf, "ioc-enrich", "", "")
	slog.Info("enrichment started", "records", 3)
	if !strings.Contains(buf.String(), "enrichment started") {
		t.Fatalf("expected message in console output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}
