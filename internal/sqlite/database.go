// Package sqlite implements the sqlkit access layer on the embedded
// SQLite engine: connection lifecycle, the prepared-statement cache,
// parameter binding, streaming result iteration, the nested transaction
// stack, and the schema migration runner. All engine access goes through
// one pinned connection so that transaction control statements and the
// statements they scope share a single engine handle.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// Database owns the engine handle, the statement cache, and the
// transaction scope stack. All operations are serialized by a single
// mutex; scheduling is fully synchronous with no background work.
type Database struct {
	mu       sync.Mutex
	ctx      context.Context
	pool     *sql.DB
	conn     *sql.Conn
	filename string
	readonly bool
	closed   bool

	cache  *stmtCache
	scopes []*transaction
	iters  map[*iterator]struct{}

	functions  map[string]bool
	collations map[string]bool
}

// Open opens (or creates) the database at path. types.MemoryPath opens a
// private in-memory database. The connection is pinned so transaction
// control and prepared statements share one engine handle.
func Open(path string, opts types.Options) (*Database, error) {
	ctx := context.Background()

	pool, err := sql.Open("sqlite", dsn(path, opts))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", classify(err))
	}
	pool.SetMaxOpenConns(1)

	conn, err := pool.Conn(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("opening database: %w", classify(err))
	}

	db := &Database{
		ctx:        ctx,
		pool:       pool,
		conn:       conn,
		filename:   path,
		readonly:   opts.ReadOnly,
		iters:      make(map[*iterator]struct{}),
		functions:  make(map[string]bool),
		collations: make(map[string]bool),
	}
	size := opts.StatementCacheSize
	if size <= 0 {
		size = types.DefaultStatementCacheSize
	}
	db.cache = newStmtCache(db, size)

	if err := db.configure(opts); err != nil {
		conn.Close()
		pool.Close()
		return nil, err
	}
	return db, nil
}

// dsn builds the driver DSN from the target path and open options.
func dsn(path string, opts types.Options) string {
	if path == types.MemoryPath {
		return path
	}
	mode := "rwc"
	switch {
	case opts.ReadOnly:
		mode = "ro"
	case opts.ReadWrite && !opts.Create:
		mode = "rw"
	}
	return "file:" + path + "?mode=" + mode
}

// configure applies startup pragmas. Write pragmas are skipped for
// read-only connections.
func (db *Database) configure(opts types.Options) error {
	timeout := opts.BusyTimeout
	if timeout < 0 {
		timeout = 0
	}
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", timeout.Milliseconds()),
	}
	if !db.readonly {
		pragmas = append(pragmas,
			"PRAGMA journal_mode = WAL",
			"PRAGMA synchronous = NORMAL",
			"PRAGMA foreign_keys = ON",
			"PRAGMA temp_store = MEMORY",
		)
	}
	for _, p := range pragmas {
		if _, err := db.conn.ExecContext(db.ctx, p); err != nil {
			return fmt.Errorf("configuring database: %w", classify(err))
		}
	}
	return nil
}

// Filename returns the path the database was opened with.
func (db *Database) Filename() string { return db.filename }

// IsClosed reports whether Close has been called.
func (db *Database) IsClosed() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.closed
}

// Close checkpoints, finalizes every cached statement, and releases the
// connection. Idempotent: repeated calls return nil.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil
	}
	// Drop open cursors first: conn.Close blocks until every Rows opened
	// on the pinned connection is gone.
	for it := range db.iters {
		it.rows.Close()
		it.closed = true
	}
	db.iters = nil
	if !db.readonly {
		// Best-effort final checkpoint; a failure here must not block close.
		_, _ = db.conn.ExecContext(db.ctx, "PRAGMA wal_checkpoint(TRUNCATE)")
	}
	db.cache.purge()
	db.closed = true
	for _, s := range db.scopes {
		s.state = scopeRolledBack
	}
	db.scopes = nil
	err := db.conn.Close()
	if perr := db.pool.Close(); err == nil {
		err = perr
	}
	if err != nil {
		return fmt.Errorf("closing database: %w", classify(err))
	}
	return nil
}

// checkOpen must be called with db.mu held.
func (db *Database) checkOpen() error {
	if db.closed {
		return types.ErrConnectionClosed
	}
	return nil
}

// Prepare compiles sql into a cached Statement. The cache key is the
// exact SQL text; a second Prepare with identical text returns the same
// handle. Syntax errors surface here, everything else at execution.
func (db *Database) Prepare(sqlText string) (types.Statement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	return db.cache.prepare(sqlText)
}

// Run prepares sql through the cache and executes it for side effect.
func (db *Database) Run(sqlText string, params types.Params) (types.RunResult, error) {
	stmt, err := db.Prepare(sqlText)
	if err != nil {
		return types.RunResult{}, err
	}
	defer stmt.Close()
	return stmt.Run(params)
}

// Exec executes a batch of statements without bound parameters. The
// batch may contain any number of statements, including DDL.
func (db *Database) Exec(sqlText string) (types.RunResult, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return types.RunResult{}, err
	}
	return db.exec(sqlText)
}

// exec must be called with db.mu held.
func (db *Database) exec(sqlText string) (types.RunResult, error) {
	res, err := db.conn.ExecContext(db.ctx, sqlText)
	if err != nil {
		return types.RunResult{}, classify(err)
	}
	return runResult(res), nil
}

func runResult(res sql.Result) types.RunResult {
	var out types.RunResult
	if n, err := res.RowsAffected(); err == nil {
		out.Changes = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out
}

// Pragma reads an engine configuration value. Pragmas returning several
// rows (e.g. database_list) yield one Value per row.
func (db *Database) Pragma(name string) ([]types.Value, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if !validIdent(name) {
		return nil, fmt.Errorf("%w: invalid pragma name %q", types.ErrInvalidScope, name)
	}
	return db.pragmaQuery(name)
}

// SetPragma writes an engine configuration value and reads the setting
// back. Only Integer and Text values are accepted.
func (db *Database) SetPragma(name string, value types.Value) ([]types.Value, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if !validIdent(name) {
		return nil, fmt.Errorf("%w: invalid pragma name %q", types.ErrInvalidScope, name)
	}
	var lit string
	switch value.Kind() {
	case types.KindInteger:
		lit = fmt.Sprintf("%d", value.Int64())
	case types.KindText:
		lit = quoteTextLiteral(value.Text())
	default:
		return nil, fmt.Errorf("%w: pragma value must be integer or text", types.ErrTypeMismatch)
	}
	if _, err := db.conn.ExecContext(db.ctx, fmt.Sprintf("PRAGMA %s = %s", name, lit)); err != nil {
		return nil, classify(err)
	}
	return db.pragmaQuery(name)
}

// pragmaQuery returns the first output column of each result row.
// Multi-column pragmas such as database_list are valid. Must be called
// with db.mu held.
func (db *Database) pragmaQuery(name string) ([]types.Value, error) {
	rows, err := db.conn.QueryContext(db.ctx, "PRAGMA "+name)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}

	var out []types.Value
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning pragma %s: %w", name, err)
		}
		out = append(out, fromEngine(raw[0]))
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// RegisterFunction records a custom SQL function name. Duplicate
// registrations are a usage error.
func (db *Database) RegisterFunction(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return err
	}
	if db.functions[name] {
		return fmt.Errorf("%w: function %q already registered", types.ErrInvalidScope, name)
	}
	db.functions[name] = true
	return nil
}

// RegisterCollation records a custom collation name. Duplicate
// registrations are a usage error.
func (db *Database) RegisterCollation(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return err
	}
	if db.collations[name] {
		return fmt.Errorf("%w: collation %q already registered", types.ErrInvalidScope, name)
	}
	db.collations[name] = true
	return nil
}

// fromEngine maps an engine-native column value onto the tagged model.
// The driver yields nil, int64, float64, string, []byte, and time.Time
// for columns with date-like declared types.
func fromEngine(v any) types.Value {
	switch x := v.(type) {
	case nil:
		return types.Null()
	case int64:
		return types.Integer(x)
	case float64:
		return types.Real(x)
	case string:
		return types.Text(x)
	case []byte:
		b := make([]byte, len(x))
		copy(b, x)
		return types.Blob(b)
	case time.Time:
		return types.Text(x.Format(time.RFC3339Nano))
	default:
		return types.Text(fmt.Sprint(x))
	}
}

// validIdent reports whether s is a plain identifier safe to splice into
// SQL that cannot carry bind parameters (pragmas, savepoint names,
// introspection targets).
func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func quoteTextLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
