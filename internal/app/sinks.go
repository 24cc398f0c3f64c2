package app

import (
	"context"
	"io"

	"github.com/specialistvlad/tidrun/internal/ctxlog"
	"github.com/specialistvlad/tidrun/internal/sink"
)

// buildSinks assembles the transcript sinks from the suite settings and the
// CLI overrides. The returned closers must be closed after the run.
func (a *App) buildSinks(ctx context.Context, runID string) (sink.Sink, []io.Closer) {
	logger := ctxlog.FromContext(ctx)
	var sinks sink.Multi
	var closers []io.Closer

	if a.settings.Console {
		mode, err := sink.ParseColorMode(a.settings.Color)
		if err != nil {
			logger.Warn("Invalid color mode, falling back to auto.", "color", a.settings.Color, "error", err)
			mode = sink.ColorAuto
		}
		sinks = append(sinks, sink.NewConsole(a.outW, mode))
	}

	sioCfg := a.settings.SocketIO
	url := a.config.SocketIOURL
	if sioCfg != nil && url == "" {
		url = sioCfg.URL
	}
	if url != "" {
		cfg := sink.SocketIOConfig{URL: url, RunID: runID, MaxRetries: 3}
		if sioCfg != nil {
			cfg.Namespace = sioCfg.Namespace
			cfg.Event = sioCfg.Event
			cfg.MaxRetries = uint64(sioCfg.Retries)
			cfg.InsecureSkipVerify = sioCfg.InsecureSkipVerify
		}
		s := sink.NewSocketIO(ctx, cfg)
		logger.Debug("Socket.IO sink configured.", "connected", s.Connected())
		sinks = append(sinks, s)
		closers = append(closers, s)
	}

	logger.Debug("Sinks configured.", "count", len(sinks))
	if len(sinks) == 0 {
		logger.Warn("No sinks configured, the transcript is discarded.")
		return sink.Discard, closers
	}
	return sinks, closers
}
