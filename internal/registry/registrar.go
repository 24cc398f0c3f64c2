package registry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/specialistvlad/tidrun/internal/ctxlog"
)

// Registrar is the guarded entry point test modules use to add units. One
// mutex covers the whole Registry; registration volume is small and happens
// once per process.
type Registrar struct {
	mu     sync.Mutex
	reg    *Registry
	logger *slog.Logger
}

// NewRegistrar returns a Registrar writing into reg. The logger is taken
// from ctx.
func NewRegistrar(ctx context.Context, reg *Registry) *Registrar {
	logger := ctxlog.FromContext(ctx).With("component", "registrar")
	logger.Debug("Registrar created.", "existing_entries", reg.Size())
	return &Registrar{
		reg:    reg,
		logger: logger,
	}
}

// Register adds unit with the given description. If the unit's handle is
// already registered the existing entry is returned unchanged; that is not
// an error.
func (r *Registrar) Register(unit *Unit, name string) (Entry, error) {
	if unit == nil {
		return Entry{}, ErrNilUnit
	}
	if unit.fn == nil {
		return Entry{}, ErrNilFunc
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, inserted := r.reg.register(r.logger, unit, name)
	if inserted {
		r.logger.Debug("Inserted test unit.", "tid", e.Seq, "description", e.Description, "handle", e.Handle)
	}
	return e, nil
}

// Add wraps fn in a new Unit and registers it. The returned Handle can be
// kept to re-check registration later.
func (r *Registrar) Add(fn Func, name string) (Handle, error) {
	if fn == nil {
		return 0, ErrNilFunc
	}
	e, err := r.Register(NewUnit(fn), name)
	if err != nil {
		return 0, err
	}
	return e.Handle, nil
}

// Registered reports whether h is present in the Registry.
func (r *Registrar) Registered(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.reg.Lookup(h)
	return ok
}

// Size returns the number of registered entries.
func (r *Registrar) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reg.Size()
}
