package utilities

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"maturity-assessment-backend/internal/config"
)

// SetupLogging installs a JSON slog logger writing to stdout and, when a
// file is configured, to a size-rotated log file.
func SetupLogging(c config.LoggingConfig) (*slog.Logger, error) {
	var w io.Writer = os.Stdout
	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   true,
		})
	}

	logger := NewLogger(w, c.Level)
	slog.SetDefault(logger)
	return logger, nil
}

// NewLogger returns a JSON logger writing to w at the named level.
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything
// else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func Info(format string, v ...any) {
	slog.Info(fmt.Sprintf(format, v...))
}

func Warn(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func Error(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}
