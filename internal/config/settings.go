// Package config carries the CLI settings: defaults, HYPLY_* environment
// overrides, and the slog setup derived from them.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"log/slog"
)

// Settings holds all CLI configuration.
type Settings struct {
	// Output settings
	OutputFile string
	Format     string // "text", "json" or "yaml"

	// Detection behavior
	ShowBreakdown   bool
	AllTypes        bool
	CodeStats       bool
	Licenses        bool
	Workers         int
	ExcludePatterns []string

	// Logging
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
	LogFile   string // Optional: write logs to file instead of stderr
}

// DefaultSettings returns default configuration.
func DefaultSettings() *Settings {
	return &Settings{
		Format:          "text",
		Workers:         0, // one per CPU
		ExcludePatterns: []string{},
		LogLevel:        slog.LevelError,
		LogFormat:       "text",
	}
}

// LoadSettings builds settings from defaults and HYPLY_* environment
// overrides.
func LoadSettings() *Settings {
	s := DefaultSettings()

	envString("HYPLY_OUTPUT", &s.OutputFile)
	envString("HYPLY_LOG_FORMAT", &s.LogFormat)
	envString("HYPLY_LOG_FILE", &s.LogFile)
	envBool("HYPLY_BREAKDOWN", &s.ShowBreakdown)
	envBool("HYPLY_ALL_TYPES", &s.AllTypes)
	envBool("HYPLY_STATS", &s.CodeStats)
	envBool("HYPLY_LICENSES", &s.Licenses)

	if v := os.Getenv("HYPLY_FORMAT"); v != "" {
		s.Format = strings.ToLower(v)
	}
	if v := os.Getenv("HYPLY_EXCLUDE"); v != "" {
		s.ExcludePatterns = splitPatterns(v)
	}
	if v := os.Getenv("HYPLY_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Workers = n
		}
	}
	if v := os.Getenv("HYPLY_LOG_LEVEL"); v != "" {
		if level, err := ParseLogLevel(v); err == nil {
			s.LogLevel = level
		}
	}

	return s
}

func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envBool(key string, target *bool) {
	if v := os.Getenv(key); v != "" {
		*target = strings.EqualFold(v, "true")
	}
}

// splitPatterns turns a comma-separated glob list into trimmed patterns.
func splitPatterns(raw string) []string {
	parts := strings.Split(raw, ",")
	patterns := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}

// ParseLogLevel resolves a level name to a slog.Level. slog's own parser
// covers debug/info/warn/error; "warning" and "fatal" are accepted as
// aliases.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "warning":
		return slog.LevelWarn, nil
	case "fatal":
		return slog.LevelError, nil // slog has no fatal level
	}

	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}

// ConfigureLogger builds the logger described by the settings.
func (s *Settings) ConfigureLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	out := s.logDestination()

	if s.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

// logDestination resolves where log records go. An unopenable log file
// degrades to stderr so diagnostics are never lost.
func (s *Settings) logDestination() io.Writer {
	if s.LogFile == "" {
		return os.Stderr
	}
	file, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Cannot open log file %s: %v\n", s.LogFile, err)
		return os.Stderr
	}
	return file
}

// Validate checks if settings are valid.
func (s *Settings) Validate() error {
	switch s.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid format: %s. Valid formats are: text, json, yaml", s.Format)
	}
	if s.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", s.Workers)
	}
	return nil
}
