package sqlite

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

type scopeState int

const (
	scopeActive scopeState = iota
	scopeCommitted
	scopeRolledBack
)

// transaction is one scope on the database's transaction stack: the
// top-level transaction (empty savepoint name) or a nested savepoint.
// The engine tracks nesting through savepoint names; the stack exists so
// misuse fails before reaching the engine.
type transaction struct {
	db    *Database
	name  string
	state scopeState
}

// Begin opens the top-level transaction. Nesting goes through Savepoint;
// a second Begin while any scope is active is a usage error.
func (db *Database) Begin(mode types.TxMode) (types.Transaction, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if len(db.scopes) > 0 {
		return nil, fmt.Errorf("%w: transaction already active", types.ErrInvalidScope)
	}
	if _, err := db.exec("BEGIN " + mode.Keyword()); err != nil {
		return nil, err
	}
	t := &transaction{db: db}
	db.scopes = append(db.scopes, t)
	return t, nil
}

// InTransaction reports whether any transaction scope is active.
func (db *Database) InTransaction() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.scopes) > 0
}

// Active reports whether the scope is still open.
func (t *transaction) Active() bool {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	return t.state == scopeActive
}

// Savepoint pushes a named child scope under this one. Only the
// innermost active scope may open a child. An empty name gets a
// generated one; explicit names must be plain identifiers.
func (t *transaction) Savepoint(name string) (types.Transaction, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if err := t.db.checkOpen(); err != nil {
		return nil, err
	}
	if err := t.innermost(); err != nil {
		return nil, err
	}
	if name == "" {
		name = savepointName()
	} else if !validIdent(name) {
		return nil, fmt.Errorf("%w: invalid savepoint name %q", types.ErrInvalidScope, name)
	}
	if _, err := t.db.exec("SAVEPOINT " + name); err != nil {
		return nil, err
	}
	child := &transaction{db: t.db, name: name}
	t.db.scopes = append(t.db.scopes, child)
	return child, nil
}

// Commit releases a savepoint, or commits the top-level transaction.
// Committing the top level with savepoints outstanding resolves them
// implicitly.
func (t *transaction) Commit() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if err := t.db.checkOpen(); err != nil {
		return err
	}
	if t.isTopLevel() {
		if _, err := t.db.exec("COMMIT"); err != nil {
			return err
		}
		t.db.resolveAll(scopeCommitted)
		return nil
	}
	if err := t.innermost(); err != nil {
		return err
	}
	if _, err := t.db.exec("RELEASE SAVEPOINT " + t.name); err != nil {
		return err
	}
	t.state = scopeCommitted
	t.db.scopes = t.db.scopes[:len(t.db.scopes)-1]
	return nil
}

// Rollback reverts writes made since this scope opened. A savepoint is
// rolled back and then released, so the parent scope stays active with
// the savepoint's writes undone. Rolling back the top level with
// savepoints outstanding discards them too.
func (t *transaction) Rollback() error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if err := t.db.checkOpen(); err != nil {
		return err
	}
	if t.isTopLevel() {
		if _, err := t.db.exec("ROLLBACK"); err != nil {
			return err
		}
		t.db.resolveAll(scopeRolledBack)
		return nil
	}
	if err := t.innermost(); err != nil {
		return err
	}
	if _, err := t.db.exec("ROLLBACK TO SAVEPOINT " + t.name); err != nil {
		return err
	}
	if _, err := t.db.exec("RELEASE SAVEPOINT " + t.name); err != nil {
		return err
	}
	t.state = scopeRolledBack
	t.db.scopes = t.db.scopes[:len(t.db.scopes)-1]
	return nil
}

// isTopLevel must be called with db.mu held.
func (t *transaction) isTopLevel() bool {
	return len(t.db.scopes) > 0 && t.db.scopes[0] == t
}

// innermost verifies this scope is active and on top of the stack.
// Caller holds db.mu.
func (t *transaction) innermost() error {
	if t.state != scopeActive {
		return fmt.Errorf("%w: scope already resolved", types.ErrInvalidScope)
	}
	n := len(t.db.scopes)
	if n == 0 || t.db.scopes[n-1] != t {
		return fmt.Errorf("%w: scope is not innermost", types.ErrInvalidScope)
	}
	return nil
}

// resolveAll marks every scope on the stack with state and clears it.
// Caller holds db.mu.
func (db *Database) resolveAll(state scopeState) {
	for _, s := range db.scopes {
		s.state = state
	}
	db.scopes = nil
}

// savepointName generates a collision-free savepoint identifier.
func savepointName() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "sp_" + strings.ReplaceAll(id.String(), "-", "")
}
