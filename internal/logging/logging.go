// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Init configures the default slog logger for service. Output is JSON when IOC_LOG_JSON is
// 1/true/json, otherwise human-readable console output. IOC_LOG_LEVEL selects the level.
func Init(service string) *slog.Logger {
	return initWith(os.Stderr, service, os.Getenv("IOC_LOG_JSON"), os.Getenv("IOC_LOG_LEVEL"))
}

func initWith(w io.Writer, service, mode, level string) *slog.Logger {
	mode = strings.ToLower(strings.TrimSpace(mode))
	jsonMode := mode == "1" || mode == "true" || mode == "json"
	lvl := parseLevel(level)

	var handler slog.Handler
	if jsonMode {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			Level:           charmLevel(lvl),
		})
	}
	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	logger.Debug("logging initialized", "json", jsonMode)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func charmLevel(l slog.Level) charmlog.Level {
	switch {
	case l <= slog.LevelDebug:
		return charmlog.DebugLevel
	case l <= slog.LevelInfo:
		return charmlog.InfoLevel
	case l <= slog.LevelWarn:
		return charmlog.WarnLevel
	default:
		return charmlog.ErrorLevel
	}
}
