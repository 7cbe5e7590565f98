package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// EnvLogLevel overrides every other source of the log level.
const EnvLogLevel = "VFXVOX_LOG_LEVEL"

// New creates an hclog.Logger writing to stderr. level is the value from the
// --log-level flag or the config file; the environment variable wins.
func New(name, level string) hclog.Logger {
	return NewWithOutput(name, level, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(name, level string, out io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      out,
		Level:       determineLogLevel(level, out),
	})
}

// determineLogLevel returns the level from VFXVOX_LOG_LEVEL if set, otherwise
// from level. An empty level means warn.
func determineLogLevel(level string, out io.Writer) hclog.Level {
	if env := os.Getenv(EnvLogLevel); env != "" {
		level = env
	}
	if level == "" {
		return hclog.Warn
	}
	return parseLogLevel(strings.ToUpper(level), out)
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string, out io.Writer) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	case "OFF":
		return hclog.Off
	default:
		hclog.New(&hclog.LoggerOptions{
			Level:       hclog.Warn,
			DisableTime: true,
			Output:      out,
		}).Warn("Unrecognized log level, defaulting to INFO", "providedLevel", levelStr)
		return hclog.Info
	}
}
