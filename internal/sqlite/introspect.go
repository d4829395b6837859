package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// Tables lists user tables in name order. Engine-internal tables are
// excluded.
func (db *Database) Tables() ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	rows, err := db.conn.QueryContext(db.ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return names, nil
}

// TableExists reports whether a user table with the given name exists.
func (db *Database) TableExists(table string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return false, err
	}
	row := db.conn.QueryRowContext(db.ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	var n int64
	if err := row.Scan(&n); err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

// TableColumns describes the columns of a table in declaration order.
func (db *Database) TableColumns(table string) ([]types.ColumnInfo, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if !validIdent(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", types.ErrInvalidScope, table)
	}
	rows, err := db.conn.QueryContext(db.ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var cols []types.ColumnInfo
	for rows.Next() {
		var (
			cid     int64
			name    string
			decl    string
			notnull int64
			dflt    *string
			pk      int64
		)
		if err := rows.Scan(&cid, &name, &decl, &notnull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scanning column info: %w", err)
		}
		cols = append(cols, types.ColumnInfo{
			Name:         name,
			DeclaredType: decl,
			NotNull:      notnull != 0,
			DefaultValue: dflt,
			PrimaryKey:   pk != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrNoSuchTable, table)
	}
	return cols, nil
}

// TableIndexes describes the indexes on a table, including the columns
// each index covers.
func (db *Database) TableIndexes(table string) ([]types.IndexInfo, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	if !validIdent(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", types.ErrInvalidScope, table)
	}
	rows, err := db.conn.QueryContext(db.ctx, "PRAGMA index_list("+table+")")
	if err != nil {
		return nil, classify(err)
	}
	var indexes []types.IndexInfo
	for rows.Next() {
		var (
			seq     int64
			name    string
			unique  int64
			origin  string
			partial int64
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning index list: %w", err)
		}
		indexes = append(indexes, types.IndexInfo{
			Name:    name,
			Unique:  unique != 0,
			Origin:  origin,
			Partial: partial != 0,
		})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, classify(err)
	}

	for i := range indexes {
		cols, err := db.indexColumns(indexes[i].Name)
		if err != nil {
			return nil, err
		}
		indexes[i].Columns = cols
	}
	return indexes, nil
}

// indexColumns must be called with db.mu held. Index names come from the
// engine's own catalog and may not be plain identifiers, so they are
// quoted rather than validated.
func (db *Database) indexColumns(index string) ([]string, error) {
	rows, err := db.conn.QueryContext(db.ctx, `PRAGMA index_info("`+index+`")`)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno int64
			cid   int64
			name  *string
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, fmt.Errorf("scanning index info: %w", err)
		}
		// A nil name is an expression or rowid column.
		if name != nil {
			cols = append(cols, *name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return cols, nil
}

// TableSQL returns the CREATE statement recorded for a table; ok is
// false when the table does not exist.
func (db *Database) TableSQL(table string) (string, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return "", false, err
	}
	rows, err := db.conn.QueryContext(db.ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	if err != nil {
		return "", false, classify(err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return "", false, classify(err)
		}
		return "", false, nil
	}
	var ddl *string
	if err := rows.Scan(&ddl); err != nil {
		return "", false, classify(err)
	}
	if ddl == nil {
		return "", true, nil
	}
	return *ddl, true, nil
}

// Info returns size and version metadata for the open database.
func (db *Database) Info() (types.DatabaseInfo, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := db.checkOpen(); err != nil {
		return types.DatabaseInfo{}, err
	}

	var info types.DatabaseInfo
	row := db.conn.QueryRowContext(db.ctx,
		"SELECT "+
			"(SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'), "+
			"(SELECT COUNT(*) FROM sqlite_master WHERE type = 'index'), "+
			"sqlite_version()")
	if err := row.Scan(&info.TableCount, &info.IndexCount, &info.EngineVersion); err != nil {
		return types.DatabaseInfo{}, classify(err)
	}

	pages, err := db.pragmaQuery("page_count")
	if err != nil {
		return types.DatabaseInfo{}, err
	}
	size, err := db.pragmaQuery("page_size")
	if err != nil {
		return types.DatabaseInfo{}, err
	}
	if len(pages) > 0 {
		info.PageCount = pages[0].Int64()
	}
	if len(size) > 0 {
		info.PageSize = size[0].Int64()
	}
	info.SizeBytes = info.PageCount * info.PageSize
	return info, nil
}
