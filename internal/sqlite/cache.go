package sqlite

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// stmtCache keys prepared statements by their exact SQL text. Capacity
// overflow evicts the least recently used entry; an evicted statement
// that still has live references stays usable and is finalized when the
// last reference is released.
type stmtCache struct {
	db  *Database
	lru *lru.Cache[string, *Statement]
}

// newStmtCache panics only if size is not positive, which Open guards.
func newStmtCache(db *Database, size int) *stmtCache {
	c := &stmtCache{db: db}
	c.lru, _ = lru.NewWithEvict(size, c.onEvict)
	return c
}

// prepare returns the cached handle for sqlText, compiling it on a miss.
// Caller holds db.mu.
func (c *stmtCache) prepare(sqlText string) (*Statement, error) {
	if stmt, ok := c.lru.Get(sqlText); ok {
		stmt.refs++
		return stmt, nil
	}
	raw, err := c.db.conn.PrepareContext(c.db.ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", classify(err))
	}
	stmt := &Statement{
		db:   c.db,
		sql:  sqlText,
		stmt: raw,
		refs: 1,
	}
	c.lru.Add(sqlText, stmt)
	return stmt, nil
}

// onEvict runs inside Add or Purge, with db.mu already held.
func (c *stmtCache) onEvict(_ string, stmt *Statement) {
	stmt.evicted = true
	if stmt.refs == 0 {
		stmt.finalize()
	}
}

// release drops one caller reference. The underlying handle is finalized
// once the statement has left the cache and the last reference is gone.
// Caller holds db.mu.
func (c *stmtCache) release(stmt *Statement) {
	if stmt.refs > 0 {
		stmt.refs--
	}
	if stmt.refs == 0 && stmt.evicted {
		stmt.finalize()
	}
}

// purge finalizes every cached statement. Entries with live references
// are marked evicted and finalized on their last release. Caller holds
// db.mu.
func (c *stmtCache) purge() {
	c.lru.Purge()
}

func (c *stmtCache) len() int { return c.lru.Len() }
