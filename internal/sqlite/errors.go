package sqlite

import (
	"errors"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// classify attaches the taxonomy tag to an engine-reported failure. The
// engine's message text is preserved verbatim; only the sentinel and the
// constraint kind are added. Errors that already carry a tag (bind-time
// failures from the binder) pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *types.EngineError
	if errors.As(err, &ee) {
		return err
	}

	code := 0
	var de *sqlitedrv.Error
	if errors.As(err, &de) {
		code = de.Code()
	}
	msg := err.Error()

	sentinel, constraint := classifyCode(code, msg)
	return &types.EngineError{
		Sentinel:   sentinel,
		Constraint: constraint,
		Code:       code,
		Message:    msg,
	}
}

func classifyCode(code int, msg string) (error, types.ConstraintKind) {
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return types.ErrBusy, ""
	case sqlite3.SQLITE_MISMATCH:
		return types.ErrTypeMismatch, ""
	case sqlite3.SQLITE_RANGE:
		return types.ErrParameterCountMismatch, ""
	case sqlite3.SQLITE_CONSTRAINT:
		return types.ErrConstraint, constraintKind(code, msg)
	}
	// The driver reports some failures only as generic SQLITE_ERROR, or
	// without a code at all; fall back to the message text.
	switch {
	case strings.Contains(msg, "syntax error"):
		return types.ErrSyntax, ""
	case strings.Contains(msg, "no such table"):
		return types.ErrNoSuchTable, ""
	case strings.Contains(msg, "no such column"):
		return types.ErrNoSuchColumn, ""
	case strings.Contains(msg, "constraint failed"):
		return types.ErrConstraint, constraintKind(code, msg)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "database table is locked"):
		return types.ErrBusy, ""
	case strings.Contains(msg, "datatype mismatch"):
		return types.ErrTypeMismatch, ""
	}
	return nil, ""
}

func constraintKind(code int, msg string) types.ConstraintKind {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return types.ConstraintUnique
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return types.ConstraintNotNull
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return types.ConstraintPrimaryKey
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return types.ConstraintForeignKey
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return types.ConstraintCheck
	}
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return types.ConstraintUnique
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return types.ConstraintNotNull
	case strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return types.ConstraintPrimaryKey
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return types.ConstraintForeignKey
	case strings.Contains(msg, "CHECK constraint failed"):
		return types.ConstraintCheck
	}
	return ""
}
