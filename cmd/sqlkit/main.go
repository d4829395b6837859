// Package main provides the sqlkit CLI, a thin shell over the SQLite
// access layer for running statements, inspecting schema, and applying
// migrations.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error categories onto shell exit codes: usage and data
// errors exit 1, environment failures exit 2.
func exitCode(err error) int {
	switch {
	case errors.Is(err, types.ErrSyntax),
		errors.Is(err, types.ErrConstraint),
		errors.Is(err, types.ErrNoSuchTable),
		errors.Is(err, types.ErrNoSuchColumn),
		errors.Is(err, types.ErrParameterCountMismatch),
		errors.Is(err, types.ErrMissingParameter),
		errors.Is(err, types.ErrTypeMismatch),
		errors.Is(err, types.ErrMigrationFailed),
		errors.Is(err, types.ErrInvalidScope):
		return exitUserError
	default:
		return exitSysError
	}
}
