package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/specialistvlad/tidrun/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variables that mirror the flags,
// e.g. TIDRUN_LOG_LEVEL for --log-level.
const EnvPrefix = "TIDRUN"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly (help, version),
// or an ExitError.
func Parse(args []string, output io.Writer, version string) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var config *app.Config
	cmd := &cobra.Command{
		Use:   "tidrun [flags] [SUITE_FILE]",
		Short: "Run the registered test units and print a pass/fail transcript.",
		Long: `tidrun - a test registration and execution engine.

Every compiled-in test module registers its units, then all units run in
registration order. A failing unit never stops the ones after it.

SUITE_FILE is an optional HCL file that sets the banner title, separator
style and output sinks. Every flag can also be set through the environment
as ` + EnvPrefix + `_<FLAG>, e.g. ` + EnvPrefix + `_LOG_LEVEL=debug.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, positional []string) error {
			path := v.GetString("suite")
			if path == "" && len(positional) > 0 {
				path = positional[0]
			}
			slog.Debug("Suite path determined.", "path", path)

			cfg, err := app.NewConfig(app.Config{
				SuitePath:     path,
				LogFormat:     strings.ToLower(v.GetString("log-format")),
				LogLevel:      strings.ToLower(v.GetString("log-level")),
				Color:         strings.ToLower(v.GetString("color")),
				TraceExporter: strings.ToLower(v.GetString("trace")),
				SocketIOURL:   v.GetString("socketio-url"),
				FailExit:      !v.GetBool("no-fail-exit"),
				Args:          redactArgs(args),
			})
			if err != nil {
				return err
			}
			config = cfg
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	flags := cmd.Flags()
	flags.StringP("suite", "s", "", "Path to the HCL suite file.")
	flags.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flags.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.String("color", "", "Console colors. Options: 'auto', 'always', 'never'. Overrides the suite file.")
	flags.String("trace", "none", "Trace exporter. Options: 'none', 'stdout'.")
	flags.String("socketio-url", "", "Also stream the transcript to this Socket.IO server.")
	flags.Bool("no-fail-exit", false, "Exit 0 even when some units failed.")
	if err := v.BindPFlags(flags); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if config == nil {
		// help or version was printed
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// AsExitError unwraps err into an ExitError, if it is one.
func AsExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr, true
	}
	return nil, false
}

// FailuresError is returned when the run finished with failing units and
// FailExit is set.
func FailuresError(failed, total int) *ExitError {
	return &ExitError{Code: 1, Message: fmt.Sprintf("%d of %d test units failed", failed, total)}
}

// redactArgs masks URL credentials in args before they are shown in the
// suite banner. Both "--flag=value" and separate value forms are covered.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		prefix, value := "", arg
		if strings.HasPrefix(arg, "-") {
			name, v, ok := strings.Cut(arg, "=")
			if !ok {
				out[i] = arg
				continue
			}
			prefix, value = name+"=", v
		}
		if u, err := url.Parse(value); err == nil && u.User != nil && u.Host != "" {
			value = u.Redacted()
		}
		out[i] = prefix + value
	}
	return out
}
