package env_vars

import (
	"os"
	"testing"

	"github.com/specialistvlad/tidrun/internal/registry"
	"github.com/specialistvlad/tidrun/internal/runner"
	"github.com/specialistvlad/tidrun/internal/sink"
	"github.com/specialistvlad/tidrun/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModule_PassesInSaneEnvironment(t *testing.T) {
	ctx, _ := testutil.LogContext(t)
	reg := registry.New()
	require.NoError(t, registry.RegisterAll(registry.NewRegistrar(ctx, reg), &Module{}))
	require.Equal(t, 3, reg.Size())

	rep := runner.New(reg).Execute(ctx, sink.Discard)
	assert.True(t, rep.OK(), rep.Summary())
}

func TestCheckTempDirWritable_ReportsErrno(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can write anywhere")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })
	t.Setenv("TMPDIR", dir)

	ctx, _ := testutil.LogContext(t)
	reg := registry.New()
	_, err := registry.NewRegistrar(ctx, reg).Add(CheckTempDirWritable, "tmp")
	require.NoError(t, err)

	rep := runner.New(reg).Execute(ctx, sink.Discard)
	require.Equal(t, 1, rep.Len())
	res := rep.Results[0]

	assert.Equal(t, runner.FailedDomain, res.Outcome)
	assert.True(t, res.HasCode)
}
