package main

import (
	"errors"
	"io/fs"

	"github.com/manuel-freire/snolabib/internal/reconcile"
	"github.com/manuel-freire/snolabib/internal/render"
)

// Exit codes reported by the CLI.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, missing tool)
	ExitDataError   = 3 // Data error (missing resource, malformed input)
	ExitIntegrity   = 4 // Unified collection violates reconciler guarantees
)

// exitCodeFor maps an error to the exit code it should terminate with.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, reconcile.ErrIntegrity):
		return ExitIntegrity
	case errors.Is(err, render.ErrToolNotFound):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist):
		return ExitDataError
	default:
		return ExitError
	}
}
