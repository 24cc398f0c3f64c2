// Package app wires a run together: it configures logging, creates the
// registry, lets every test module register its units, and executes them
// through the runner into the configured sinks. It is decoupled from any
// specific entrypoint like a CLI.
package app
