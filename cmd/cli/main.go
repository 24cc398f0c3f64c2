package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/tidrun/internal/app"
	"github.com/specialistvlad/tidrun/internal/cli"
)

// Set at build time with -ldflags "-X main.version=... -X main.buildDate=...".
var (
	version   = "dev"
	buildDate = "unknown"
)

// main is the entrypoint for the tidrun application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := cli.AsExitError(err); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW, errW io.Writer, args []string) (err error) {
	appConfig, shouldExit, err := cli.Parse(args, outW, version)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	appConfig.BuildDate = buildDate

	// A panic while wiring the app becomes a plain error so the user gets a
	// clean message instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	ctx := context.Background()
	tidrunApp, err := app.NewApp(ctx, outW, errW, appConfig)
	if err != nil {
		return err
	}

	report, err := tidrunApp.Run(ctx)
	if err != nil {
		return err
	}
	if !report.OK() && appConfig.FailExit {
		return cli.FailuresError(report.Failed(), report.Len())
	}
	return nil
}
