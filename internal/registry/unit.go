package registry

import (
	"strconv"
	"sync/atomic"
)

// Func is the body of a test unit. A unit fails by returning a non-nil
// error or by panicking.
type Func func() error

// Handle is the opaque identity of a Unit. Handles are unique for the life
// of the process and never reused.
type Handle uint64

// String renders the handle for logs.
func (h Handle) String() string {
	return "unit#" + strconv.FormatUint(uint64(h), 10)
}

var lastHandle atomic.Uint64

// Unit pairs a test body with its identity. Build units with NewUnit.
type Unit struct {
	handle Handle
	fn     Func
}

// NewUnit wraps fn into a Unit with a freshly generated Handle. Two units
// built from the same fn are still distinct units.
func NewUnit(fn Func) *Unit {
	return &Unit{
		handle: Handle(lastHandle.Add(1)),
		fn:     fn,
	}
}

// Handle returns the unit's identity.
func (u *Unit) Handle() Handle { return u.handle }
