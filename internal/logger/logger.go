package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var std = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init installs a JSON logger on stdout at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func Init(level string) {
	InitWriter(os.Stdout, level)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level string) {
	std = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(std)
	std.Info("logger initialized")
}

// Slog exposes the underlying logger for libraries that take a *slog.Logger.
func Slog() *slog.Logger {
	return std
}

func Debug(msg string, fields map[string]any) {
	std.Debug(msg, attrs(fields)...)
}

func Info(msg string, fields map[string]any) {
	std.Info(msg, attrs(fields)...)
}

func Warn(msg string, fields map[string]any) {
	std.Warn(msg, attrs(fields)...)
}

func Error(msg string, fields map[string]any) {
	std.Error(msg, attrs(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	std.Error(msg, append(attrs(fields), slog.Bool("fatal", true))...)
	os.Exit(1)
}

func attrs(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	out := make([]any, 0, len(fields))
	for k, v := range fields {
		out = append(out, slog.Any(k, v))
	}
	return out
}

func parseLevel(level string) slog.Level {
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

// Redact keeps only the first few characters of a secret for log lines.
func Redact(secret string) string {
	const keep = 6
	if len(secret) <= keep {
		return strings.Repeat("*", len(secret))
	}
	return secret[:keep] + "..."
}
