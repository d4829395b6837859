// Package sqlite provides the public API for the SQLite sqlkit backend.
// This package exposes the factory functions for opening databases and
// building migrators while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/sqlkit/internal/sqlite"
	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// Open opens (or creates) the database file at path.
//
// Example:
//
//	db, err := sqlite.Open("app.db", types.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
func Open(path string, opts types.Options) (types.Database, error) {
	return sqlite.Open(path, opts)
}

// OpenMemory opens a private in-memory database with default options.
func OpenMemory() (types.Database, error) {
	return sqlite.Open(types.MemoryPath, types.DefaultOptions())
}

// NewMigrator returns a migration runner over db.
func NewMigrator(db types.Database) types.Migrator {
	return sqlite.NewMigrator(db)
}
