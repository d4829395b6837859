// Tests for connection lifecycle and statement execution.
package sqlite

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(types.MemoryPath, types.DefaultOptions())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustExec(t *testing.T, db *Database, sql string) {
	t.Helper()
	if _, err := db.Exec(sql); err != nil {
		t.Fatalf("Exec(%q) failed: %v", sql, err)
	}
}

func TestOpen_CreatesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")

	db, err := Open(dbPath, types.DefaultOptions())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	// The file exists once something is written.
	mustExec(t, db, "CREATE TABLE t (id INTEGER)")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file not created")
	}
	if db.Filename() != dbPath {
		t.Errorf("Filename: expected %q, got %q", dbPath, db.Filename())
	}
}

func TestOpen_NoCreateMissingFile(t *testing.T) {
	opts := types.DefaultOptions()
	opts.Create = false

	db, err := Open(filepath.Join(t.TempDir(), "missing.db"), opts)
	if err == nil {
		db.Close()
		t.Fatal("expected error opening a missing file without create")
	}
}

func TestRun_InsertReportsChangesAndRowid(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")

	res, err := db.Run("INSERT INTO users (name) VALUES (?)", types.List("alice"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Changes != 1 {
		t.Errorf("expected 1 change, got %d", res.Changes)
	}
	if res.LastInsertID != 1 {
		t.Errorf("expected last insert id 1, got %d", res.LastInsertID)
	}
}

func TestExec_MultiStatementBatch(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, `
		CREATE TABLE a (x INTEGER);
		CREATE TABLE b (y INTEGER);
		INSERT INTO a VALUES (1);
		INSERT INTO b VALUES (2);
	`)

	tables, err := db.Tables()
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	if len(tables) != 2 {
		t.Errorf("expected 2 tables, got %v", tables)
	}
}

func TestClose_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !db.IsClosed() {
		t.Error("IsClosed should report true after Close")
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close should not error, got %v", err)
	}
}

func TestClose_WithOpenIterator(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, "CREATE TABLE seq (n INTEGER); INSERT INTO seq VALUES (1), (2), (3)")

	stmt, err := db.Prepare("SELECT n FROM seq ORDER BY n")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	it, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	if _, err := it.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	// Must return even though the iterator's cursor is still open on the
	// pinned connection.
	if err := db.Close(); err != nil {
		t.Fatalf("Close with open iterator failed: %v", err)
	}

	if _, err := it.Next(); !errors.Is(err, types.ErrConnectionClosed) {
		t.Errorf("Next after close: expected ErrConnectionClosed, got %v", err)
	}
	if it.HasMore() {
		t.Error("HasMore should report false after close")
	}
	if err := it.Reset(); !errors.Is(err, types.ErrConnectionClosed) {
		t.Errorf("Reset after close: expected ErrConnectionClosed, got %v", err)
	}
	if err := it.Close(); err != nil {
		t.Errorf("iterator Close after database close should be a no-op, got %v", err)
	}
}

func TestClosed_OperationsFail(t *testing.T) {
	db := openTestDB(t)
	db.Close()

	if _, err := db.Exec("SELECT 1"); !errors.Is(err, types.ErrConnectionClosed) {
		t.Errorf("Exec: expected ErrConnectionClosed, got %v", err)
	}
	if _, err := db.Prepare("SELECT 1"); !errors.Is(err, types.ErrConnectionClosed) {
		t.Errorf("Prepare: expected ErrConnectionClosed, got %v", err)
	}
	if _, err := db.Begin(types.Deferred); !errors.Is(err, types.ErrConnectionClosed) {
		t.Errorf("Begin: expected ErrConnectionClosed, got %v", err)
	}
	if _, err := db.Tables(); !errors.Is(err, types.ErrConnectionClosed) {
		t.Errorf("Tables: expected ErrConnectionClosed, got %v", err)
	}
}

func TestPragma_GetAndSet(t *testing.T) {
	db := openTestDB(t)

	values, err := db.Pragma("foreign_keys")
	if err != nil {
		t.Fatalf("Pragma failed: %v", err)
	}
	if len(values) != 1 || values[0].Int64() != 1 {
		t.Errorf("expected foreign_keys on, got %v", values)
	}

	values, err = db.SetPragma("user_version", types.Integer(5))
	if err != nil {
		t.Fatalf("SetPragma failed: %v", err)
	}
	if len(values) != 1 || values[0].Int64() != 5 {
		t.Errorf("expected user_version 5, got %v", values)
	}
}

func TestPragma_MultiColumnRows(t *testing.T) {
	db := openTestDB(t)

	// database_list yields (seq, name, file) per attached database; the
	// first column of each row is what comes back.
	values, err := db.Pragma("database_list")
	if err != nil {
		t.Fatalf("Pragma failed: %v", err)
	}
	if len(values) < 1 {
		t.Fatal("expected at least the main database")
	}
	if values[0].Kind() != types.KindInteger || values[0].Int64() != 0 {
		t.Errorf("expected seq 0 for main, got %v", values[0])
	}
}

func TestPragma_RejectsBadName(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.Pragma("user_version; DROP TABLE x"); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope for injected name, got %v", err)
	}
	if _, err := db.SetPragma("x", types.Real(1.5)); !errors.Is(err, types.ErrTypeMismatch) {
		t.Errorf("expected ErrTypeMismatch for real pragma value, got %v", err)
	}
}

func TestRegisterFunction_DuplicateFails(t *testing.T) {
	db := openTestDB(t)

	if err := db.RegisterFunction("checksum"); err != nil {
		t.Fatalf("RegisterFunction failed: %v", err)
	}
	if err := db.RegisterFunction("checksum"); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope on duplicate, got %v", err)
	}
}

func TestRegisterCollation_DuplicateFails(t *testing.T) {
	db := openTestDB(t)

	if err := db.RegisterCollation("nocase_utf8"); err != nil {
		t.Fatalf("RegisterCollation failed: %v", err)
	}
	if err := db.RegisterCollation("nocase_utf8"); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope on duplicate, got %v", err)
	}
}

func TestErrorClassification(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY,
			email TEXT UNIQUE,
			name TEXT NOT NULL
		);
	`)

	if _, err := db.Prepare("SELEC wrong"); !errors.Is(err, types.ErrSyntax) {
		t.Errorf("expected ErrSyntax, got %v", err)
	}
	if _, err := db.Run("SELECT * FROM ghosts", types.NoParams); !errors.Is(err, types.ErrNoSuchTable) {
		t.Errorf("expected ErrNoSuchTable, got %v", err)
	}
	if _, err := db.Run("SELECT nope FROM users", types.NoParams); !errors.Is(err, types.ErrNoSuchColumn) {
		t.Errorf("expected ErrNoSuchColumn, got %v", err)
	}

	_, err := db.Run("INSERT INTO users (email, name) VALUES (?, ?)", types.List("a@x.com", "a"))
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	_, err = db.Run("INSERT INTO users (email, name) VALUES (?, ?)", types.List("a@x.com", "b"))
	if !errors.Is(err, types.ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
	var ee *types.EngineError
	if !errors.As(err, &ee) {
		t.Fatal("expected an EngineError")
	}
	if ee.Constraint != types.ConstraintUnique {
		t.Errorf("expected unique constraint kind, got %q", ee.Constraint)
	}

	_, err = db.Run("INSERT INTO users (email) VALUES (?)", types.List("c@x.com"))
	if !errors.As(err, &ee) || ee.Constraint != types.ConstraintNotNull {
		t.Errorf("expected not_null constraint kind, got %v", err)
	}
}
