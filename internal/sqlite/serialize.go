package sqlite

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// Serialize dumps the schema and all table contents as a single
// executable SQL batch. The dump restores the database when fed to
// Deserialize, or to any SQLite shell.
func (db *Database) Serialize() ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("PRAGMA foreign_keys=OFF;\n")
	b.WriteString("BEGIN TRANSACTION;\n")

	tables, err := db.dumpSchema(&b)
	if err != nil {
		return nil, err
	}
	for _, table := range tables {
		if err := db.dumpTable(&b, table); err != nil {
			return nil, err
		}
	}

	b.WriteString("COMMIT;\n")
	return []byte(b.String()), nil
}

// Deserialize executes a Serialize dump against this database. The dump
// carries its own transaction, so a failure part-way leaves prior state
// intact.
func (db *Database) Deserialize(data []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return err
	}
	if len(db.scopes) > 0 {
		return fmt.Errorf("%w: cannot deserialize inside a transaction", types.ErrInvalidScope)
	}
	_, execErr := db.conn.ExecContext(db.ctx, string(data))
	if execErr != nil {
		// A mid-batch failure can leave the dump's own transaction open
		// on the engine with no scope tracking it.
		_, _ = db.conn.ExecContext(db.ctx, "ROLLBACK")
	}
	if !db.readonly {
		// The dump prologue turns foreign_keys off for the whole
		// connection, not just the restore.
		_, _ = db.conn.ExecContext(db.ctx, "PRAGMA foreign_keys = ON")
	}
	if execErr != nil {
		return classify(execErr)
	}
	return nil
}

// dumpSchema writes every stored DDL statement, tables before indexes,
// and returns the user table names in dump order. Caller holds db.mu.
func (db *Database) dumpSchema(b *strings.Builder) ([]string, error) {
	rows, err := db.conn.QueryContext(db.ctx,
		"SELECT name, type, sql FROM sqlite_master "+
			"WHERE sql IS NOT NULL AND name NOT LIKE 'sqlite_%' "+
			"ORDER BY CASE type WHEN 'table' THEN 0 WHEN 'index' THEN 1 ELSE 2 END, name")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name, kind, ddl string
		if err := rows.Scan(&name, &kind, &ddl); err != nil {
			return nil, fmt.Errorf("scanning schema entry: %w", err)
		}
		b.WriteString(ddl)
		b.WriteString(";\n")
		if kind == "table" {
			tables = append(tables, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return tables, nil
}

// dumpTable writes one INSERT per row. Caller holds db.mu.
func (db *Database) dumpTable(b *strings.Builder, table string) error {
	rows, err := db.conn.QueryContext(db.ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return classify(err)
	}
	raw := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scanning row of %s: %w", table, err)
		}
		b.WriteString("INSERT INTO ")
		b.WriteString(quoteIdent(table))
		b.WriteString(" VALUES (")
		for i, v := range raw {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(sqlLiteral(fromEngine(v)))
		}
		b.WriteString(");\n")
	}
	if err := rows.Err(); err != nil {
		return classify(err)
	}
	return nil
}

// sqlLiteral renders a value as a SQL literal that the engine reads back
// to the identical stored value.
func sqlLiteral(v types.Value) string {
	switch v.Kind() {
	case types.KindInteger:
		return strconv.FormatInt(v.Int64(), 10)
	case types.KindReal:
		s := strconv.FormatFloat(v.Float64(), 'g', -1, 64)
		// A bare integer rendering would round-trip as Integer.
		if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && s != "NaN" {
			s += ".0"
		}
		return s
	case types.KindText:
		return quoteTextLiteral(v.Text())
	case types.KindBlob:
		return "X'" + hex.EncodeToString(v.Blob()) + "'"
	default:
		return "NULL"
	}
}

// quoteIdent double-quotes an identifier, escaping embedded quotes.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
