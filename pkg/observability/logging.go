package observability

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string // "debug", "info", "warn", "error"; offsets like "info+2" also parse
	Format  string // "json" or "text"
	Service string // attached to every record when set

	// Output defaults to os.Stdout.
	Output io.Writer
}

// Formats accepted by LogConfig.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// InitLogger builds a structured slog.Logger and installs it as the default.
// An unparseable level falls back to info and anything other than "json"
// selects the text handler.
func InitLogger(cfg LogConfig) *slog.Logger {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level < slog.LevelInfo,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, FormatJSON) {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With(slog.String("service", cfg.Service))
	}
	slog.SetDefault(logger)
	return logger
}

// ParseLevel parses a level name. The empty string is info and "warning" is
// accepted as an alias for warn.
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// ValidFormat reports whether f names a supported log format.
func ValidFormat(f string) bool {
	return strings.EqualFold(f, FormatJSON) || strings.EqualFold(f, FormatText)
}
