package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/tidrun/internal/ctxlog"
	"github.com/specialistvlad/tidrun/internal/registry"
	"github.com/specialistvlad/tidrun/internal/suitefile"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logW     io.Writer
	logger   *slog.Logger
	config   *Config
	settings *suitefile.Settings
	registry *registry.Registry
}

// NewApp is the constructor for the main application. It configures an
// isolated logger writing to logW, loads the suite file, and runs the
// registration phase for the given modules (the core modules when none are
// given). The transcript of a later Run goes to outW; logs and exported
// spans go to logW.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	settings := suitefile.Default()
	if cfg.SuitePath != "" {
		var err error
		settings, err = suitefile.Load(ctx, cfg.SuitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		logger.Debug("Suite file loaded.", "path", cfg.SuitePath)
	}
	if cfg.Color != "" {
		settings.Color = cfg.Color
	}

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := registry.RegisterAll(registry.NewRegistrar(ctx, reg), modules...); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	logger.Debug("Registration phase complete.", "modules", len(modules), "units", reg.Size())

	return &App{
		outW:     outW,
		logW:     logW,
		logger:   logger,
		config:   cfg,
		settings: settings,
		registry: reg,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Settings returns the effective suite settings.
func (a *App) Settings() *suitefile.Settings {
	return a.settings
}
