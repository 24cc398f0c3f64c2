package registry

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
)

var (
	// ErrNilUnit is returned when a nil *Unit is offered for registration.
	ErrNilUnit = errors.New("registry: nil unit")
	// ErrNilFunc is returned when a unit or Add call carries no test body.
	ErrNilFunc = errors.New("registry: unit has no func")
)

// Entry is the registry's record of one unit.
type Entry struct {
	Handle Handle
	// Name is the description as supplied by the registering module.
	Name string
	// Description is Name prefixed with the sequence token, "[TID:007]name".
	Description string
	// Seq is assigned on first registration, starting at 0.
	Seq  int
	Func Func
}

// FormatTID renders the sequence token used as description prefix.
func FormatTID(seq int) string {
	return fmt.Sprintf("[TID:%03d]", seq)
}

// Registry is the ordered store of entries for one run. It has no removal
// operation; once registered an entry lives as long as the Registry.
//
// Registry itself is not safe for concurrent mutation. All writes go
// through a Registrar, which holds the lock.
type Registry struct {
	entries map[Handle]*Entry
	order   []Handle
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[Handle]*Entry),
	}
}

// register stores unit under its handle unless it is already present. The
// returned bool reports whether a new entry was created.
func (r *Registry) register(logger *slog.Logger, unit *Unit, name string) (Entry, bool) {
	if existing, ok := r.entries[unit.handle]; ok {
		logger.Debug(fmt.Sprintf("Not inserted %s, because found already", existing.Description),
			"handle", unit.handle, "rejected_name", name)
		return *existing, false
	}

	seq := len(r.order)
	e := &Entry{
		Handle:      unit.handle,
		Name:        name,
		Description: FormatTID(seq) + name,
		Seq:         seq,
		Func:        unit.fn,
	}
	r.entries[unit.handle] = e
	r.order = append(r.order, unit.handle)
	return *e, true
}

// Size returns the number of registered entries.
func (r *Registry) Size() int {
	return len(r.order)
}

// Entries returns a snapshot of all entries in iteration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, *r.entries[h])
	}
	return out
}

// All iterates the entries in registration order.
func (r *Registry) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, h := range r.order {
			if !yield(*r.entries[h]) {
				return
			}
		}
	}
}

// Lookup returns the entry registered under h.
func (r *Registry) Lookup(h Handle) (Entry, bool) {
	e, ok := r.entries[h]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}
