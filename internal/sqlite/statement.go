package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// Statement is one cached prepared statement. The cache owns the engine
// handle; callers hold counted references and Close releases one. The
// same *Statement is returned for every Prepare of identical SQL text.
type Statement struct {
	db   *Database
	sql  string
	stmt *sql.Stmt

	refs    int
	evicted bool
	done    bool

	cols     []types.ColumnInfo
	colsOnce bool
}

// Source returns the SQL text exactly as passed to Prepare.
func (s *Statement) Source() string { return s.sql }

// Close releases the caller's reference. The engine handle survives
// until the cache evicts the statement and the last reference is gone.
func (s *Statement) Close() error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.closed {
		return nil
	}
	s.db.cache.release(s)
	return nil
}

// finalize closes the engine handle. Caller holds db.mu.
func (s *Statement) finalize() {
	if s.done {
		return
	}
	s.done = true
	_ = s.stmt.Close()
}

// Run executes the statement for side effect.
func (s *Statement) Run(params types.Params) (types.RunResult, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.checkOpen(); err != nil {
		return types.RunResult{}, err
	}
	args, err := bindArgs(s.sql, params)
	if err != nil {
		return types.RunResult{}, err
	}
	res, err := s.stmt.ExecContext(s.db.ctx, args...)
	if err != nil {
		return types.RunResult{}, classify(err)
	}
	return runResult(res), nil
}

// All executes the statement and materializes every row.
func (s *Statement) All(params types.Params) ([]types.Row, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	rows, cols, err := s.query(params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return drainRows(rows, cols)
}

// Get executes the statement and returns the first row, or nil when the
// result set is empty.
func (s *Statement) Get(params types.Params) (*types.Row, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	rows, cols, err := s.query(params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, classify(err)
		}
		return nil, nil
	}
	row, err := scanRow(rows, cols)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Values executes the statement and returns the rows without names.
func (s *Statement) Values(params types.Params) ([][]types.Value, error) {
	rowset, err := s.All(params)
	if err != nil {
		return nil, err
	}
	out := make([][]types.Value, len(rowset))
	for i := range rowset {
		out[i] = rowset[i].Values()
	}
	return out, nil
}

// Iter executes the statement and returns a streaming cursor. The
// cursor holds its own statement reference until closed, and keeps the
// resolved arguments so Reset can re-execute.
func (s *Statement) Iter(params types.Params) (types.Iterator, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	args, err := bindArgs(s.sql, params)
	if err != nil {
		return nil, err
	}
	rows, err := s.stmt.QueryContext(s.db.ctx, args...)
	if err != nil {
		return nil, classify(err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, classify(err)
	}
	s.refs++
	it := &iterator{stmt: s, args: args, rows: rows, cols: cols}
	s.db.iters[it] = struct{}{}
	return it, nil
}

// Columns describes the statement's output columns. Row-producing
// statements are probed once with NULL arguments; statements that
// produce no rows report an empty set. The probe runs inside a
// savepoint that is rolled back, so probing a writing statement (DML
// with RETURNING) leaves no trace.
func (s *Statement) Columns() ([]types.ColumnInfo, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.checkOpen(); err != nil {
		return nil, err
	}
	if s.colsOnce {
		return s.cols, nil
	}
	if !producesRows(s.sql) {
		s.colsOnce = true
		return nil, nil
	}
	max := 0
	for _, ph := range scanPlaceholders(s.sql) {
		if ph.index > max {
			max = ph.index
		}
	}

	sp := savepointName()
	if _, err := s.db.conn.ExecContext(s.db.ctx, "SAVEPOINT "+sp); err != nil {
		return nil, classify(err)
	}
	cols, err := s.probeColumns(max)
	_, _ = s.db.conn.ExecContext(s.db.ctx, "ROLLBACK TO SAVEPOINT "+sp)
	_, _ = s.db.conn.ExecContext(s.db.ctx, "RELEASE SAVEPOINT "+sp)
	if err != nil {
		return nil, err
	}
	s.cols = cols
	s.colsOnce = true
	return cols, nil
}

// probeColumns executes the statement with NULL arguments and reads the
// result metadata. Caller holds db.mu and the guarding savepoint; the
// cursor is closed before the savepoint is resolved.
func (s *Statement) probeColumns(nargs int) ([]types.ColumnInfo, error) {
	rows, err := s.stmt.QueryContext(s.db.ctx, make([]any, nargs)...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	cts, err := rows.ColumnTypes()
	if err != nil {
		return nil, classify(err)
	}
	cols := make([]types.ColumnInfo, len(cts))
	for i, ct := range cts {
		cols[i] = types.ColumnInfo{
			Name:         ct.Name(),
			DeclaredType: ct.DatabaseTypeName(),
		}
	}
	return cols, nil
}

// query binds params and executes. Caller holds db.mu.
func (s *Statement) query(params types.Params) (*sql.Rows, []string, error) {
	args, err := bindArgs(s.sql, params)
	if err != nil {
		return nil, nil, err
	}
	rows, err := s.stmt.QueryContext(s.db.ctx, args...)
	if err != nil {
		return nil, nil, classify(err)
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, nil, classify(err)
	}
	return rows, cols, nil
}

// scanRow reads the current cursor position into a Row. Duplicate and
// empty column names are preserved in order.
func scanRow(rows *sql.Rows, cols []string) (*types.Row, error) {
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning row: %w", classify(err))
	}
	vals := make([]types.Value, len(cols))
	for i := range raw {
		vals[i] = fromEngine(raw[i])
	}
	row := types.NewRow(cols, vals)
	return &row, nil
}

func drainRows(rows *sql.Rows, cols []string) ([]types.Row, error) {
	var out []types.Row
	for rows.Next() {
		row, err := scanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// producesRows reports whether executing the statement yields a result
// set. The effective verb is resolved past any WITH prologue; DML
// produces rows only when it carries a RETURNING clause.
func producesRows(sqlText string) bool {
	verb, returning := statementVerb(sqlText)
	switch verb {
	case "SELECT", "VALUES", "PRAGMA", "EXPLAIN":
		return true
	case "INSERT", "UPDATE", "DELETE", "REPLACE":
		return returning
	}
	return false
}

// statementVerb resolves the statement's effective top-level verb,
// skipping comments, quoted literals, and parenthesized groups. A WITH
// prologue keeps its common-table-expression bodies inside parentheses,
// so the first verb keyword seen at depth zero is the one the engine
// executes. Also reports whether a top-level RETURNING clause appears.
func statementVerb(sqlText string) (verb string, returning bool) {
	depth := 0
	i := 0
	for i < len(sqlText) {
		c := sqlText[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = skipQuoted(sqlText, i, c)
		case c == '[':
			i++
			for i < len(sqlText) && sqlText[i] != ']' {
				i++
			}
			i++
		case strings.HasPrefix(sqlText[i:], "--"):
			for i < len(sqlText) && sqlText[i] != '\n' {
				i++
			}
		case strings.HasPrefix(sqlText[i:], "/*"):
			end := strings.Index(sqlText[i+2:], "*/")
			if end < 0 {
				return verb, returning
			}
			i += 2 + end + 2
		case c == '(':
			depth++
			i++
		case c == ')':
			if depth > 0 {
				depth--
			}
			i++
		case isNameByte(c):
			start := i
			for i < len(sqlText) && isNameByte(sqlText[i]) {
				i++
			}
			if depth > 0 {
				continue
			}
			switch strings.ToUpper(sqlText[start:i]) {
			case "SELECT", "VALUES", "INSERT", "UPDATE", "DELETE", "REPLACE",
				"PRAGMA", "EXPLAIN", "CREATE", "DROP", "ALTER":
				if verb == "" {
					verb = strings.ToUpper(sqlText[start:i])
				}
			case "RETURNING":
				returning = true
			}
		default:
			i++
		}
	}
	return verb, returning
}
