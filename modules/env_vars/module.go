// Package env_vars registers units that check the process environment the
// suite runs in.
package env_vars

import (
	"fmt"
	"os"
	"strings"

	"github.com/specialistvlad/tidrun/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// CheckEnvironWellFormed fails if any environment entry lacks a key.
func CheckEnvironWellFormed() error {
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 {
			return fmt.Errorf("malformed environment entry %q", e)
		}
	}
	return nil
}

// CheckTempDirWritable creates and removes a file in os.TempDir. I/O
// failures keep their errno, so they are reported with a code.
func CheckTempDirWritable() error {
	f, err := os.CreateTemp("", "tidrun-*")
	if err != nil {
		return fmt.Errorf("temp dir not writable: %w", err)
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}

// CheckWorkingDirReadable lists the working directory.
func CheckWorkingDirReadable() error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("cannot resolve working directory: %w", err)
	}
	if _, err := os.ReadDir(wd); err != nil {
		return fmt.Errorf("working directory %s not readable: %w", wd, err)
	}
	return nil
}

// Register registers the environment units.
func (m *Module) Register(r *registry.Registrar) error {
	if _, err := r.Add(CheckEnvironWellFormed, "env/environment is well formed"); err != nil {
		return err
	}
	if _, err := r.Add(CheckTempDirWritable, "env/temp dir is writable"); err != nil {
		return err
	}
	if _, err := r.Add(CheckWorkingDirReadable, "env/working dir is readable"); err != nil {
		return err
	}
	return nil
}
