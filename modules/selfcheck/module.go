// Package selfcheck registers units that exercise the engine itself: the
// sequence tokens, idempotent registration and failure isolation are
// checked against a private registry on every run.
package selfcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/tidrun/internal/ctxlog"
	"github.com/specialistvlad/tidrun/internal/registry"
	"github.com/specialistvlad/tidrun/internal/runner"
	"github.com/specialistvlad/tidrun/internal/sink"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// quietCtx keeps nested registrations and runs out of the host's log.
func quietCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))
}

// CheckTIDPadding verifies the sequence token format.
func CheckTIDPadding() error {
	for seq, want := range map[int]string{0: "[TID:000]", 7: "[TID:007]", 123: "[TID:123]"} {
		if got := registry.FormatTID(seq); got != want {
			return fmt.Errorf("FormatTID(%d) = %q, want %q", seq, got, want)
		}
	}
	return nil
}

// CheckDuplicateRegistration verifies that a unit registered twice keeps
// its first description.
func CheckDuplicateRegistration() error {
	reg := registry.New()
	r := registry.NewRegistrar(quietCtx(), reg)
	unit := registry.NewUnit(func() error { return nil })

	if _, err := r.Register(unit, "first"); err != nil {
		return err
	}
	e, err := r.Register(unit, "second")
	if err != nil {
		return err
	}
	if reg.Size() != 1 {
		return fmt.Errorf("registry size = %d after duplicate registration, want 1", reg.Size())
	}
	if e.Description != "[TID:000]first" {
		return fmt.Errorf("duplicate registration replaced description with %q", e.Description)
	}
	return nil
}

// CheckFailureIsolation runs a private three-unit suite whose middle unit
// fails and verifies the last unit still ran.
func CheckFailureIsolation() error {
	ctx := quietCtx()
	reg := registry.New()
	r := registry.NewRegistrar(ctx, reg)

	ran := 0
	units := []registry.Func{
		func() error { ran++; return nil },
		func() error { ran++; return errors.New("expected failure") },
		func() error { ran++; return nil },
	}
	for i, fn := range units {
		if _, err := r.Add(fn, fmt.Sprintf("isolated-%d", i)); err != nil {
			return err
		}
	}

	rep := runner.New(reg).Execute(ctx, sink.Discard)

	var got []runner.Outcome
	for _, res := range rep.Results {
		got = append(got, res.Outcome)
	}
	want := []runner.Outcome{runner.Passed, runner.FailedStandard, runner.Passed}
	if !slices.Equal(got, want) {
		return fmt.Errorf("outcomes = %v, want %v", got, want)
	}
	if ran != 3 {
		return fmt.Errorf("%d of 3 units ran", ran)
	}
	return nil
}

// Register registers the self-check units.
func (m *Module) Register(r *registry.Registrar) error {
	checks := []struct {
		name string
		fn   registry.Func
	}{
		{"selfcheck/tid tokens are zero padded", CheckTIDPadding},
		{"selfcheck/duplicate registration is a no-op", CheckDuplicateRegistration},
		{"selfcheck/failures are isolated", CheckFailureIsolation},
	}
	for _, c := range checks {
		if _, err := r.Add(c.fn, c.name); err != nil {
			return err
		}
	}
	return nil
}
