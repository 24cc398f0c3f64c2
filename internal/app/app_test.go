package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/tidrun/internal/registry"
	"github.com/specialistvlad/tidrun/internal/runner"
	"github.com/specialistvlad/tidrun/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, cfg Config) *Config {
	t.Helper()
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	return c
}

func writeSuite(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600))
	return path
}

func TestNewApp_RegistersGivenModules(t *testing.T) {
	t.Parallel()

	mod := (&testutil.SimpleModule{}).
		Add("one", func() error { return nil }).
		Add("two", func() error { return nil })

	a, err := NewApp(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, newTestConfig(t, Config{}), mod)
	require.NoError(t, err)

	assert.Equal(t, 2, a.Registry().Size())
	require.Len(t, mod.Handles, 2)
	e, ok := a.Registry().Lookup(mod.Handles[1])
	require.True(t, ok)
	assert.Equal(t, "[TID:001]two", e.Description)
}

func TestNewApp_DefaultsToCoreModules(t *testing.T) {
	t.Parallel()

	a, err := NewApp(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, newTestConfig(t, Config{}))
	require.NoError(t, err)
	assert.Equal(t, 6, a.Registry().Size())
}

func TestNewApp_RegistrationError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	bad := registry.ModuleFunc(func(*registry.Registrar) error { return boom })

	_, err := NewApp(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, newTestConfig(t, Config{}), bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "registration failed")
}

func TestNewApp_BadSuitePath(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, Config{SuitePath: filepath.Join(t.TempDir(), "missing.hcl")})
	_, err := NewApp(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, cfg, &testutil.SimpleModule{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestNewApp_ColorFlagOverridesSuite(t *testing.T) {
	t.Parallel()

	path := writeSuite(t, `
output {
  color = "always"
}
`)
	a, err := NewApp(context.Background(), &bytes.Buffer{}, &bytes.Buffer{},
		newTestConfig(t, Config{SuitePath: path, Color: "never"}), &testutil.SimpleModule{})
	require.NoError(t, err)
	assert.Equal(t, "never", a.Settings().Color)
}

func TestRun_WritesTranscript(t *testing.T) {
	t.Parallel()

	path := writeSuite(t, `
suite {
  title     = "demo"
  separator = "="
  width     = 8
}
`)
	mod := (&testutil.SimpleModule{}).
		Add("ok", func() error { return nil }).
		Add("bad", func() error { return runner.Errorf(7, "broken") })

	out := &bytes.Buffer{}
	cfg := newTestConfig(t, Config{SuitePath: path, Color: "never", BuildDate: "2025-01-01"})
	a, err := NewApp(context.Background(), out, &bytes.Buffer{}, cfg, mod)
	require.NoError(t, err)

	report, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, 1, report.Passed())
	assert.Equal(t, 1, report.Failed())

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, "========", lines[0])
	assert.Equal(t, "demo | tidrun | built 2025-01-01 | 2 tests registered", lines[1])
	assert.Contains(t, out.String(), "FAILED [code 7] broken")
	assert.Contains(t, out.String(), "1 passed, 1 failed, 2 total")
}

func TestRun_ConsoleDisabled(t *testing.T) {
	t.Parallel()

	path := writeSuite(t, `
output {
  console = false
}
`)
	mod := (&testutil.SimpleModule{}).Add("ok", func() error { return nil })

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	a, err := NewApp(context.Background(), out, logs, newTestConfig(t, Config{SuitePath: path}), mod)
	require.NoError(t, err)

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Empty(t, out.String())
	assert.Contains(t, logs.String(), "No sinks configured")
}

func TestRun_StdoutTracingGoesToLogWriter(t *testing.T) {
	t.Parallel()

	mod := (&testutil.SimpleModule{}).Add("traced", func() error { return nil })

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	cfg := newTestConfig(t, Config{Color: "never", TraceExporter: "stdout"})
	a, err := NewApp(context.Background(), out, logs, cfg, mod)
	require.NoError(t, err)

	_, err = a.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"Name": "[TID:000]traced"`)
	assert.NotContains(t, out.String(), `"Name"`, "spans must not interleave with the transcript")

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, strings.Repeat("-", 60), lines[len(lines)-1])
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		in        Config
		expectErr string
		check     func(t *testing.T, c *Config)
	}{
		{
			name: "empty fills defaults",
			in:   Config{},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "text", c.LogFormat)
				assert.Equal(t, "warn", c.LogLevel)
				assert.Equal(t, "none", c.TraceExporter)
				assert.Empty(t, c.Color)
			},
		},
		{name: "bad format", in: Config{LogFormat: "xml"}, expectErr: "invalid log-format"},
		{name: "bad level", in: Config{LogLevel: "loud"}, expectErr: "invalid log-level"},
		{name: "bad color", in: Config{Color: "sepia"}, expectErr: "color"},
		{name: "bad exporter", in: Config{TraceExporter: "jaeger"}, expectErr: "trace exporter"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewConfig(tc.in)
			if tc.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, c)
		})
	}
}
