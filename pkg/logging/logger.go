package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// LevelEnv overrides the configured log level
	LevelEnv = "AIPMAN_LOG_LEVEL"

	// JSONEnv switches output to JSON when set to "1"
	JSONEnv = "AIPMAN_JSON_LOG"

	// DefaultLevel keeps routine runs quiet
	DefaultLevel = "warn"

	linePrefix = "📦 "
)

// NewLogger creates a new hclog logger with standard settings
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	jsonFormat := os.Getenv(JSONEnv) == "1"

	// Add prefix for non-JSON output
	if !jsonFormat {
		output = NewPrefixWriter(linePrefix, output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// ResolveLevel picks the log level: an explicit flag value first, then the
// environment, then the configured value, then DefaultLevel.
func ResolveLevel(flagLevel, configLevel string) string {
	for _, candidate := range []string{flagLevel, os.Getenv(LevelEnv), configLevel} {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && hclog.LevelFromString(candidate) != hclog.NoLevel {
			return strings.ToLower(candidate)
		}
	}
	return DefaultLevel
}
