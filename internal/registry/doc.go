// Package registry holds the test units known to a run.
//
// Registration is a distinct phase that happens before execution. Test
// modules receive a *Registrar, the only mutating entry point, and add their
// units to it. The Registrar serializes every insertion behind one lock and
// keeps registration idempotent: a unit presented twice is stored once, with
// the description from its first registration.
//
// Units are identified by an opaque Handle generated when the unit is
// created, not by the function value, so closures with captured state are
// first-class units. The Registry iterates in insertion order, which is also
// the order of the sequence ids it hands out.
package registry
