// Tests for the streaming result iterator.
package sqlite

import (
	"testing"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

func iterFixture(t *testing.T) (*Database, types.Statement) {
	t.Helper()
	db := openTestDB(t)
	mustExec(t, db, `
		CREATE TABLE seq (n INTEGER);
		INSERT INTO seq VALUES (1), (2), (3);
	`)
	stmt, err := db.Prepare("SELECT n FROM seq ORDER BY n")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	t.Cleanup(func() { stmt.Close() })
	return db, stmt
}

func TestIterator_Next(t *testing.T) {
	_, stmt := iterFixture(t)

	it, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	defer it.Close()

	for want := int64(1); want <= 3; want++ {
		row, err := it.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if row == nil || row.Index(0).Int64() != want {
			t.Errorf("expected %d, got %v", want, row)
		}
	}

	row, err := it.Next()
	if err != nil {
		t.Fatalf("Next after exhaustion failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil after exhaustion, got %v", row)
	}
	if err := it.Err(); err != nil {
		t.Errorf("Err should be nil after clean exhaustion, got %v", err)
	}
}

func TestIterator_HasMoreIsSideEffectFree(t *testing.T) {
	_, stmt := iterFixture(t)

	it, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	defer it.Close()

	// Repeated HasMore calls must not consume anything.
	for i := 0; i < 5; i++ {
		if !it.HasMore() {
			t.Fatal("HasMore should be true before consuming any row")
		}
	}

	row, err := it.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if row.Index(0).Int64() != 1 {
		t.Errorf("HasMore must not advance the cursor: got %v", row)
	}

	it.Next()
	it.Next()
	if it.HasMore() {
		t.Error("HasMore should be false once exhausted")
	}
}

func TestIterator_Reset(t *testing.T) {
	db := openTestDB(t)
	mustExec(t, db, `
		CREATE TABLE seq (n INTEGER);
		INSERT INTO seq VALUES (1), (2), (3);
	`)
	stmt, err := db.Prepare("SELECT n FROM seq WHERE n >= ? ORDER BY n")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	defer stmt.Close()

	it, err := stmt.Iter(types.List(2))
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	defer it.Close()

	first, err := it.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(first))
	}

	// Reset replays the originally bound parameters from the start.
	if err := it.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	row, err := it.Next()
	if err != nil {
		t.Fatalf("Next after Reset failed: %v", err)
	}
	if row == nil || row.Index(0).Int64() != 2 {
		t.Errorf("expected first row 2 after Reset, got %v", row)
	}
}

func TestIterator_AllFromMiddle(t *testing.T) {
	_, stmt := iterFixture(t)

	it, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	defer it.Close()

	if _, err := it.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	rest, err := it.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("expected 2 remaining rows, got %d", len(rest))
	}
	if rest[0].Index(0).Int64() != 2 || rest[1].Index(0).Int64() != 3 {
		t.Errorf("unexpected remaining rows: %v", rest)
	}
}

func TestIterator_NextValues(t *testing.T) {
	_, stmt := iterFixture(t)

	it, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	defer it.Close()

	vals, err := it.NextValues()
	if err != nil {
		t.Fatalf("NextValues failed: %v", err)
	}
	if len(vals) != 1 || vals[0].Int64() != 1 {
		t.Errorf("unexpected values: %v", vals)
	}
}

func TestIterator_CloseIdempotent(t *testing.T) {
	_, stmt := iterFixture(t)

	it, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	if err := it.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := it.Close(); err != nil {
		t.Errorf("second Close should not error, got %v", err)
	}
	if it.HasMore() {
		t.Error("HasMore should be false on a closed iterator")
	}
}

func TestIterator_TwoCursorsInterleaved(t *testing.T) {
	_, stmt := iterFixture(t)

	a, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("Iter failed: %v", err)
	}
	defer a.Close()

	b, err := stmt.Iter(types.NoParams)
	if err != nil {
		t.Fatalf("second Iter failed: %v", err)
	}
	defer b.Close()

	ra, err := a.Next()
	if err != nil {
		t.Fatalf("a.Next failed: %v", err)
	}
	rb, err := b.Next()
	if err != nil {
		t.Fatalf("b.Next failed: %v", err)
	}
	if ra.Index(0).Int64() != 1 || rb.Index(0).Int64() != 1 {
		t.Errorf("independent cursors should both start at 1, got %v and %v", ra, rb)
	}
}
