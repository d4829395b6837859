// Tests for the transaction scope stack.
package sqlite

import (
	"errors"
	"testing"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

func txFixture(t *testing.T) *Database {
	t.Helper()
	db := openTestDB(t)
	mustExec(t, db, "CREATE TABLE t (x INTEGER)")
	return db
}

func countRows(t *testing.T, db *Database) int64 {
	t.Helper()
	stmt, err := db.Prepare("SELECT COUNT(*) AS n FROM t")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	defer stmt.Close()
	row, err := stmt.Get(types.NoParams)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	return row.Index(0).Int64()
}

func TestTransaction_CommitPersists(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !db.InTransaction() {
		t.Error("InTransaction should be true after Begin")
	}

	if _, err := db.Run("INSERT INTO t VALUES (1)", types.NoParams); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if db.InTransaction() {
		t.Error("InTransaction should be false after Commit")
	}
	if tx.Active() {
		t.Error("scope should not be active after Commit")
	}
	if got := countRows(t, db); got != 1 {
		t.Errorf("expected 1 row after commit, got %d", got)
	}
}

func TestTransaction_RollbackDiscards(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Immediate)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := db.Run("INSERT INTO t VALUES (1)", types.NoParams); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}

	if got := countRows(t, db); got != 0 {
		t.Errorf("expected 0 rows after rollback, got %d", got)
	}
}

func TestTransaction_NestedBeginFails(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback()

	if _, err := db.Begin(types.Deferred); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope for nested Begin, got %v", err)
	}
}

func TestTransaction_SavepointRollbackKeepsParentWrites(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := db.Run("INSERT INTO t VALUES (1)", types.NoParams); err != nil {
		t.Fatalf("insert a failed: %v", err)
	}

	sp, err := tx.Savepoint("inner")
	if err != nil {
		t.Fatalf("Savepoint failed: %v", err)
	}
	if _, err := db.Run("INSERT INTO t VALUES (2)", types.NoParams); err != nil {
		t.Fatalf("insert b failed: %v", err)
	}

	// Rolling back the savepoint undoes only its own write; the parent
	// stays active and can still commit the outer write.
	if err := sp.Rollback(); err != nil {
		t.Fatalf("savepoint Rollback failed: %v", err)
	}
	if !tx.Active() {
		t.Fatal("parent should stay active after savepoint rollback")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if got := countRows(t, db); got != 1 {
		t.Errorf("expected only the outer write to survive, got %d rows", got)
	}
}

func TestTransaction_SavepointCommitReleases(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	sp, err := tx.Savepoint("")
	if err != nil {
		t.Fatalf("Savepoint with generated name failed: %v", err)
	}
	if _, err := db.Run("INSERT INTO t VALUES (1)", types.NoParams); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := sp.Commit(); err != nil {
		t.Fatalf("savepoint Commit failed: %v", err)
	}
	if sp.Active() {
		t.Error("savepoint should be resolved after Commit")
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("outer Commit failed: %v", err)
	}
	if got := countRows(t, db); got != 1 {
		t.Errorf("expected 1 row, got %d", got)
	}
}

func TestTransaction_OnlyInnermostMayOperate(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback()

	outer, err := tx.Savepoint("outer")
	if err != nil {
		t.Fatalf("Savepoint failed: %v", err)
	}
	inner, err := outer.Savepoint("inner")
	if err != nil {
		t.Fatalf("nested Savepoint failed: %v", err)
	}

	// The middle savepoint is not innermost while inner is open.
	if err := outer.Commit(); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope for non-innermost commit, got %v", err)
	}
	if _, err := outer.Savepoint("x"); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope for non-innermost savepoint, got %v", err)
	}

	if err := inner.Commit(); err != nil {
		t.Fatalf("inner Commit failed: %v", err)
	}
	if err := outer.Commit(); err != nil {
		t.Fatalf("outer Commit after inner resolved failed: %v", err)
	}
}

func TestTransaction_TopLevelCommitResolvesChildren(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	sp, err := tx.Savepoint("child")
	if err != nil {
		t.Fatalf("Savepoint failed: %v", err)
	}
	if _, err := db.Run("INSERT INTO t VALUES (1)", types.NoParams); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// Top-level commit with a child outstanding resolves the child too.
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if sp.Active() {
		t.Error("child savepoint should be resolved by top-level commit")
	}
	if db.InTransaction() {
		t.Error("no scope should remain active")
	}
	if got := countRows(t, db); got != 1 {
		t.Errorf("expected 1 row, got %d", got)
	}
}

func TestTransaction_ResolvedScopeRejectsReuse(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := tx.Commit(); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope on double Commit, got %v", err)
	}
	if err := tx.Rollback(); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope on Rollback after Commit, got %v", err)
	}
	if _, err := tx.Savepoint("late"); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope on Savepoint after Commit, got %v", err)
	}
}

func TestTransaction_BadSavepointName(t *testing.T) {
	db := txFixture(t)

	tx, err := db.Begin(types.Deferred)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.Savepoint("bad name; DROP"); !errors.Is(err, types.ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope for invalid name, got %v", err)
	}
}

func TestTransaction_UnknownModeDefersPermissively(t *testing.T) {
	db := txFixture(t)

	// Unknown mode strings map to Deferred instead of failing.
	tx, err := db.Begin(types.ParseTxMode("serializable"))
	if err != nil {
		t.Fatalf("Begin with unknown mode failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
}
