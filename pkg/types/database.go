// Package types defines the shared data model and public interfaces of the
// sqlkit access layer: tagged values and rows, parameter sources, the error
// taxonomy, migrations, and the Database/Statement/Iterator/Transaction
// contracts implemented by the SQLite backend.
package types

// RunResult reports the side effects of a statement executed with Run.
type RunResult struct {
	// Changes is the number of rows affected.
	Changes int64
	// LastInsertID is the rowid of the most recent successful insert.
	LastInsertID int64
}

// ColumnInfo describes one output or table column.
type ColumnInfo struct {
	// Name is the column name.
	Name string
	// DeclaredType is the declared SQL type, empty when none was declared.
	DeclaredType string
	// NotNull, DefaultValue and PrimaryKey are populated for table
	// introspection; they are zero for statement output columns.
	NotNull      bool
	DefaultValue *string
	PrimaryKey   bool
}

// IndexInfo describes one index on a table.
type IndexInfo struct {
	Name    string
	Unique  bool
	Origin  string
	Partial bool
	Columns []string
}

// DatabaseInfo summarizes the open database.
type DatabaseInfo struct {
	TableCount    int64
	IndexCount    int64
	PageCount     int64
	PageSize      int64
	SizeBytes     int64
	EngineVersion string
}

// Database is an open connection to an embedded store. All access to the
// store is serialized through it; a Database and everything derived from
// it belong to one goroutine unless externally synchronized. Once closed,
// every operation fails with ErrConnectionClosed; Close is idempotent.
type Database interface {
	// Prepare compiles sql into a reusable Statement. Statements are
	// cached by exact SQL text; preparing the same text twice returns the
	// cached handle. Syntax errors surface here.
	Prepare(sql string) (Statement, error)

	// Run prepares (through the cache) and executes sql for side effect.
	Run(sql string, params Params) (RunResult, error)

	// Exec executes a batch of SQL statements without bound parameters.
	Exec(sql string) (RunResult, error)

	// Begin opens the top-level transaction. Fails with ErrInvalidScope
	// if a transaction is already active; use Savepoint for nesting.
	Begin(mode TxMode) (Transaction, error)

	// InTransaction reports whether any transaction scope is active.
	InTransaction() bool

	// Pragma reads an engine configuration value.
	Pragma(name string) ([]Value, error)

	// SetPragma writes an engine configuration value and returns the
	// resulting setting. Only Integer and Text values are accepted.
	SetPragma(name string, value Value) ([]Value, error)

	// Serialize dumps the schema and contents as executable SQL bytes.
	Serialize() ([]byte, error)

	// Deserialize executes a Serialize dump against this database.
	Deserialize(data []byte) error

	// Tables lists user tables in name order.
	Tables() ([]string, error)

	// TableExists reports whether a user table exists.
	TableExists(table string) (bool, error)

	// TableColumns describes the columns of a table.
	TableColumns(table string) ([]ColumnInfo, error)

	// TableIndexes describes the indexes of a table.
	TableIndexes(table string) ([]IndexInfo, error)

	// TableSQL returns the CREATE statement for a table; ok is false if
	// the table does not exist.
	TableSQL(table string) (sql string, ok bool, err error)

	// Info returns size and version metadata for the database.
	Info() (DatabaseInfo, error)

	// RegisterFunction records a custom SQL function name. Re-registering
	// a name fails with ErrInvalidScope.
	RegisterFunction(name string) error

	// RegisterCollation records a custom collation name. Re-registering
	// a name fails with ErrInvalidScope.
	RegisterCollation(name string) error

	// Filename returns the path the database was opened with.
	Filename() string

	// IsClosed reports whether Close has been called.
	IsClosed() bool

	// Close releases the connection and finalizes every cached statement.
	// Idempotent.
	Close() error
}

// Statement is a prepared, reusable compiled form of one SQL statement.
// Its validity is bounded by the owning connection's lifetime. Executing
// a Statement again restarts it from the beginning; for interleaved
// cursors open a second Iterator instead.
type Statement interface {
	// Run executes for side effect.
	Run(params Params) (RunResult, error)

	// All executes and materializes every resulting row.
	All(params Params) ([]Row, error)

	// Get executes and returns the first row, or nil if the result set
	// is empty. Subsequent calls re-execute from the start.
	Get(params Params) (*Row, error)

	// Values is All without column names.
	Values(params Params) ([][]Value, error)

	// Iter executes and returns a streaming cursor over the result.
	Iter(params Params) (Iterator, error)

	// Columns returns the statement's output column descriptors.
	Columns() ([]ColumnInfo, error)

	// Source returns the original SQL text, byte-identical to the text
	// passed to Prepare.
	Source() string

	// Close releases the caller's reference. The cache owns the
	// underlying handle and finalizes it on eviction or connection close.
	Close() error
}

// Iterator is a lazy, resettable cursor over a statement's result rows.
type Iterator interface {
	// Next returns the next row and advances, or (nil, nil) once
	// exhausted.
	Next() (*Row, error)

	// NextValues is Next without column names.
	NextValues() ([]Value, error)

	// HasMore reports whether a subsequent Next will yield a row. It is
	// side-effect-free and idempotent.
	HasMore() bool

	// All drains every remaining row from the current position.
	All() ([]Row, error)

	// Reset re-executes the statement with the originally bound
	// parameters and returns the cursor to the start. Valid from any
	// state, including exhausted.
	Reset() error

	// Err returns the first engine error encountered while stepping.
	Err() error

	// Close drops the cursor and releases its statement reference.
	Close() error
}

// Transaction is one transaction scope: the top-level transaction or a
// named savepoint. A scope is Active until Commit or Rollback, both
// terminal. Only the innermost active scope may be operated on, except
// that the top-level transaction may commit or roll back with child
// savepoints outstanding, implicitly resolving them.
type Transaction interface {
	// Commit releases a savepoint (parent stays active) or commits the
	// top-level transaction.
	Commit() error

	// Rollback reverts writes made since this scope opened. For a
	// savepoint the parent stays active; for the top-level transaction
	// everything since Begin is reverted.
	Rollback() error

	// Savepoint pushes a named child scope. Valid only on the innermost
	// active scope. An empty name is auto-generated.
	Savepoint(name string) (Transaction, error)

	// Active reports whether the scope is still open.
	Active() bool
}

// Migrator applies version-tracked schema migrations atomically.
type Migrator interface {
	// Migrate applies every pending migration in ascending version order
	// inside one transaction and returns the resulting schema version.
	// On any failure the database is left exactly as before.
	Migrate(migrations []Migration) (int64, error)

	// MigrateTo is Migrate bounded above by target.
	MigrateTo(migrations []Migration, target int64) (int64, error)

	// InitSchema bootstraps a brand-new database with a single migration.
	InitSchema(sql string, version int64, description string) (int64, error)

	// SchemaVersion returns the highest applied version, 0 when the
	// tracking table does not exist yet.
	SchemaVersion() (int64, error)

	// SetSchemaVersion records a version without running any SQL.
	SetSchemaVersion(version int64, description string) error

	// Records lists applied migrations in ascending version order.
	Records() ([]MigrationRecord, error)

	// CreateTableIfNotExists executes ddl unless the table already
	// exists. Reports whether the table was created.
	CreateTableIfNotExists(table, ddl string) (bool, error)

	// AddColumnIfNotExists adds a column unless present. Reports whether
	// the column was added.
	AddColumnIfNotExists(table, column, definition string) (bool, error)
}
