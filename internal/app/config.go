package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/tidrun/internal/sink"
	"github.com/specialistvlad/tidrun/internal/tracing"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SuitePath string // optional hcl suite file

	LogFormat     string
	LogLevel      string
	Color         string
	TraceExporter string
	SocketIOURL   string // adds or overrides the suite file's socketio url

	// FailExit makes the CLI exit non-zero when any unit failed.
	FailExit bool

	BuildDate string
	Args      []string // shown in the suite banner
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "text", "json":
	case "":
		cfg.LogFormat = "text"
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	case "":
		cfg.LogLevel = "warn"
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if _, err := sink.ParseColorMode(cfg.Color); err != nil {
		return nil, err
	}

	switch cfg.TraceExporter {
	case tracing.ExporterNone, tracing.ExporterStdout:
	case "":
		cfg.TraceExporter = tracing.ExporterNone
	default:
		return nil, errors.New("invalid trace exporter: must be 'none' or 'stdout'")
	}

	return &cfg, nil
}
