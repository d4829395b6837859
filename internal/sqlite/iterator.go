package sqlite

import (
	"database/sql"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// iterator streams a statement's result rows one at a time. Rows are
// materialized only as the cursor advances. A one-row lookahead buffer
// lets HasMore answer without consuming anything the caller can see.
type iterator struct {
	stmt *Statement
	args []any // resolved bind vector, replayed by Reset
	rows *sql.Rows
	cols []string

	ahead     *types.Row
	exhausted bool
	err       error
	closed    bool
}

// Next returns the next row and advances the cursor. Once the result is
// exhausted it returns (nil, nil); the iterator stays valid for Reset.
func (it *iterator) Next() (*types.Row, error) {
	it.stmt.db.mu.Lock()
	defer it.stmt.db.mu.Unlock()
	return it.next()
}

// NextValues is Next without column names.
func (it *iterator) NextValues() ([]types.Value, error) {
	it.stmt.db.mu.Lock()
	defer it.stmt.db.mu.Unlock()
	row, err := it.next()
	if err != nil || row == nil {
		return nil, err
	}
	return row.Values(), nil
}

// HasMore reports whether a subsequent Next will yield a row. The
// answer comes from the lookahead buffer, so repeated calls and the
// following Next observe the same row.
func (it *iterator) HasMore() bool {
	it.stmt.db.mu.Lock()
	defer it.stmt.db.mu.Unlock()
	if it.closed || it.err != nil || it.exhausted {
		return false
	}
	if it.ahead != nil {
		return true
	}
	it.fill()
	return it.ahead != nil
}

// All drains every remaining row from the current position.
func (it *iterator) All() ([]types.Row, error) {
	it.stmt.db.mu.Lock()
	defer it.stmt.db.mu.Unlock()
	var out []types.Row
	for {
		row, err := it.next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			return out, nil
		}
		out = append(out, *row)
	}
}

// Reset re-executes the statement with the originally bound parameters
// and rewinds the cursor to the first row. Valid from any state short
// of Close, including after exhaustion or a step error.
func (it *iterator) Reset() error {
	it.stmt.db.mu.Lock()
	defer it.stmt.db.mu.Unlock()
	if it.closed {
		return types.ErrConnectionClosed
	}
	if err := it.stmt.db.checkOpen(); err != nil {
		return err
	}
	it.rows.Close()
	rows, err := it.stmt.stmt.QueryContext(it.stmt.db.ctx, it.args...)
	if err != nil {
		return classify(err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return classify(err)
	}
	it.rows = rows
	it.cols = cols
	it.ahead = nil
	it.exhausted = false
	it.err = nil
	return nil
}

// Err returns the first engine error encountered while stepping.
func (it *iterator) Err() error {
	it.stmt.db.mu.Lock()
	defer it.stmt.db.mu.Unlock()
	return it.err
}

// Close drops the cursor and releases the iterator's statement
// reference. Idempotent.
func (it *iterator) Close() error {
	it.stmt.db.mu.Lock()
	defer it.stmt.db.mu.Unlock()
	if it.closed {
		return nil
	}
	it.closed = true
	it.rows.Close()
	delete(it.stmt.db.iters, it)
	if !it.stmt.db.closed {
		it.stmt.db.cache.release(it.stmt)
	}
	return nil
}

// next must be called with db.mu held.
func (it *iterator) next() (*types.Row, error) {
	if it.closed {
		return nil, types.ErrConnectionClosed
	}
	if it.err != nil {
		return nil, it.err
	}
	if it.ahead != nil {
		row := it.ahead
		it.ahead = nil
		return row, nil
	}
	if it.exhausted {
		return nil, nil
	}
	it.fill()
	if it.err != nil {
		return nil, it.err
	}
	row := it.ahead
	it.ahead = nil
	return row, nil
}

// fill advances the underlying cursor into the lookahead buffer. Caller
// holds db.mu.
func (it *iterator) fill() {
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			it.err = classify(err)
		}
		it.exhausted = true
		return
	}
	row, err := scanRow(it.rows, it.cols)
	if err != nil {
		it.err = err
		it.exhausted = true
		return
	}
	it.ahead = row
}
