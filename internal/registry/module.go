package registry

import (
	"fmt"
)

// Module is implemented by every test module. Register is called once by
// the host bootstrap, during the registration phase.
type Module interface {
	Register(r *Registrar) error
}

// ModuleFunc adapts a plain function to the Module interface.
type ModuleFunc func(r *Registrar) error

// Register implements Module.
func (f ModuleFunc) Register(r *Registrar) error { return f(r) }

// RegisterAll registers each module in order. It stops at the first module
// that fails; units that module added before failing stay registered.
func RegisterAll(r *Registrar, modules ...Module) error {
	for i, mod := range modules {
		if mod == nil {
			return fmt.Errorf("module %d is nil", i)
		}
		if err := mod.Register(r); err != nil {
			return fmt.Errorf("module %d (%T) failed to register: %w", i, mod, err)
		}
	}
	r.logger.Debug("All test modules registered.", "modules", len(modules), "entries", r.Size())
	return nil
}
