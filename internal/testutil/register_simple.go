package testutil

import "github.com/specialistvlad/tidrun/internal/registry"

// SimpleModule is a test helper for easily creating a module that registers
// a fixed list of named funcs, in order.
type SimpleModule struct {
	Names []string
	Funcs []registry.Func

	// Handles is filled by Register with the handle of each unit.
	Handles []registry.Handle
}

// Add appends a named func and returns the module for chaining.
func (m *SimpleModule) Add(name string, fn registry.Func) *SimpleModule {
	m.Names = append(m.Names, name)
	m.Funcs = append(m.Funcs, fn)
	return m
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registrar) error {
	for i, fn := range m.Funcs {
		h, err := r.Add(fn, m.Names[i])
		if err != nil {
			return err
		}
		m.Handles = append(m.Handles, h)
	}
	return nil
}
