package types

import "time"

// Migration is a versioned schema change unit. Versions are positive and
// unique; input order does not matter, migrations are applied in strictly
// ascending numeric order exactly once.
type Migration struct {
	// Version orders the migration. Must be positive.
	Version int64
	// SQL is the schema change, possibly multiple statements.
	SQL string
	// Description is optional human-readable context, persisted with the
	// tracking record.
	Description string
}

// MigrationRecord is the persisted proof that a version was applied.
type MigrationRecord struct {
	Version     int64
	Description string
	AppliedAt   time.Time
}
