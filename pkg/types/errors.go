package types

import "errors"

// Error taxonomy for the access layer. Engine failures are classified into
// these sentinels but keep the engine's message text verbatim (see
// EngineError). Usage errors are detected locally and fail fast.
var (
	// ErrSyntax marks malformed SQL, surfaced at prepare time.
	ErrSyntax = errors.New("syntax error")

	// ErrConstraint marks a constraint violation reported at execution.
	ErrConstraint = errors.New("constraint violation")

	// ErrNoSuchTable marks a reference to a missing table.
	ErrNoSuchTable = errors.New("no such table")

	// ErrNoSuchColumn marks a reference to a missing column.
	ErrNoSuchColumn = errors.New("no such column")

	// ErrTypeMismatch marks a value the engine's value model cannot
	// represent, detected at bind time or reported by the engine.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrParameterCountMismatch marks a positional slot with no
	// corresponding input value.
	ErrParameterCountMismatch = errors.New("parameter count mismatch")

	// ErrMissingParameter marks a named placeholder absent from the
	// supplied mapping.
	ErrMissingParameter = errors.New("missing named parameter")

	// ErrBusy marks an engine busy/locked contention error.
	ErrBusy = errors.New("database is busy or locked")

	// ErrConnectionClosed marks any operation on a closed connection.
	ErrConnectionClosed = errors.New("connection is closed")

	// ErrInvalidScope marks a transaction-scope usage error, such as
	// nesting Begin or committing a non-innermost savepoint.
	ErrInvalidScope = errors.New("invalid transaction scope operation")

	// ErrMigrationFailed marks a failed migration batch. The database is
	// guaranteed unchanged: no partial schema change or version advance
	// is observable.
	ErrMigrationFailed = errors.New("migration failed")
)

// ConstraintKind narrows ErrConstraint to the violated constraint class.
type ConstraintKind string

const (
	ConstraintUnique     ConstraintKind = "unique"
	ConstraintNotNull    ConstraintKind = "not_null"
	ConstraintPrimaryKey ConstraintKind = "primary_key"
	ConstraintForeignKey ConstraintKind = "foreign_key"
	ConstraintCheck      ConstraintKind = "check"
)

// EngineError wraps an engine-reported failure with its taxonomy tag.
// The engine message is preserved verbatim; errors.Is matches the
// classification sentinel.
type EngineError struct {
	// Sentinel is the taxonomy tag, one of the Err* sentinels above,
	// or nil when the failure has no narrower classification.
	Sentinel error
	// Constraint is set when Sentinel is ErrConstraint.
	Constraint ConstraintKind
	// Code is the engine result code, extended where available.
	Code int
	// Message is the engine's error text, unmodified.
	Message string
}

func (e *EngineError) Error() string { return e.Message }

func (e *EngineError) Unwrap() error { return e.Sentinel }
