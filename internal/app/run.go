package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/tidrun/internal/ctxlog"
	"github.com/specialistvlad/tidrun/internal/runner"
	"github.com/specialistvlad/tidrun/internal/tracing"
)

// Run executes the registered units once and returns the report. Unit
// failures are part of the report; an error means the run could not be set
// up at all.
func (a *App) Run(ctx context.Context) (*runner.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tp, err := tracing.NewProvider(tracing.Config{Exporter: a.config.TraceExporter, Writer: a.logW})
	if err != nil {
		return nil, fmt.Errorf("failed to configure tracing: %w", err)
	}
	a.logger.Debug("Tracing configured.", "exporter", a.config.TraceExporter, "enabled", tp.Enabled())
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error("Tracer shutdown failed.", "error", err)
		}
	}()

	runID := uuid.New()
	out, closers := a.buildSinks(ctx, runID.String())
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				a.logger.Error("Sink close failed.", "error", err)
			}
		}
	}()

	buildDate := a.config.BuildDate
	if buildDate == "" {
		buildDate = runner.DefaultBuildDate
	}
	r := runner.New(a.registry,
		runner.WithTitle(a.settings.Title),
		runner.WithTool(a.settings.Tool),
		runner.WithBuildDate(buildDate),
		runner.WithArgs(a.config.Args),
		runner.WithSeparator(a.settings.SeparatorRune(), a.settings.Width),
		runner.WithTracer(tp.Tracer()),
		runner.WithRunID(runID),
	)

	report := r.Execute(ctx, out)
	a.logger.Debug("App.Run method finished.", "run_id", report.RunID.String(), "ok", report.OK())
	return report, nil
}
