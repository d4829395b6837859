package sqlite

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

// migrationTable tracks applied schema versions. It is created lazily,
// inside the same transaction as the first migration batch.
const migrationTable = "sqlkit_migrations"

const migrationTableDDL = `CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
	version INTEGER PRIMARY KEY,
	description TEXT,
	applied_at INTEGER NOT NULL
)`

// Migrator applies version-tracked schema migrations. A batch either
// applies completely or leaves the database untouched: every pending
// migration and its tracking record run inside one immediate
// transaction.
type Migrator struct {
	db types.Database
}

// NewMigrator returns a Migrator over db.
func NewMigrator(db types.Database) *Migrator {
	return &Migrator{db: db}
}

// Migrate applies every pending migration in ascending version order and
// returns the resulting schema version. Input order does not matter;
// duplicate or non-positive versions are a caller error and fail before
// anything runs.
func (m *Migrator) Migrate(migrations []types.Migration) (int64, error) {
	return m.MigrateTo(migrations, math.MaxInt64)
}

// MigrateTo is Migrate bounded above by target: migrations with a
// version greater than target stay pending.
func (m *Migrator) MigrateTo(migrations []types.Migration, target int64) (int64, error) {
	sorted, err := sortedMigrations(migrations)
	if err != nil {
		return 0, err
	}

	current, err := m.SchemaVersion()
	if err != nil {
		return 0, err
	}

	var pending []types.Migration
	for _, mig := range sorted {
		if mig.Version > current && mig.Version <= target {
			pending = append(pending, mig)
		}
	}
	if len(pending) == 0 {
		return current, nil
	}

	tx, err := m.db.Begin(types.Immediate)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", types.ErrMigrationFailed, err)
	}
	if _, err := m.db.Exec(migrationTableDDL); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("%w: creating tracking table: %w", types.ErrMigrationFailed, err)
	}
	for _, mig := range pending {
		if err := m.apply(mig); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("%w: migration %d: %w", types.ErrMigrationFailed, mig.Version, err)
		}
	}
	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("%w: %w", types.ErrMigrationFailed, err)
	}
	return pending[len(pending)-1].Version, nil
}

// InitSchema bootstraps a new database with a single migration.
func (m *Migrator) InitSchema(sql string, version int64, description string) (int64, error) {
	return m.Migrate([]types.Migration{{Version: version, SQL: sql, Description: description}})
}

// SchemaVersion returns the highest applied version, 0 when no
// migration has ever been applied.
func (m *Migrator) SchemaVersion() (int64, error) {
	exists, err := m.db.TableExists(migrationTable)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	stmt, err := m.db.Prepare("SELECT COALESCE(MAX(version), 0) AS version FROM " + migrationTable)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	row, err := stmt.Get(types.NoParams)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	v, _ := row.Get("version")
	return v.Int64(), nil
}

// SetSchemaVersion records a version without running any migration SQL.
func (m *Migrator) SetSchemaVersion(version int64, description string) error {
	if version <= 0 {
		return fmt.Errorf("%w: version must be positive, got %d", types.ErrMigrationFailed, version)
	}
	if _, err := m.db.Exec(migrationTableDDL); err != nil {
		return fmt.Errorf("%w: creating tracking table: %w", types.ErrMigrationFailed, err)
	}
	_, err := m.db.Run(
		"INSERT OR REPLACE INTO "+migrationTable+" (version, description, applied_at) VALUES (?, ?, ?)",
		types.List(version, description, time.Now().Unix()),
	)
	if err != nil {
		return fmt.Errorf("%w: recording version %d: %w", types.ErrMigrationFailed, version, err)
	}
	return nil
}

// Records lists applied migrations in ascending version order.
func (m *Migrator) Records() ([]types.MigrationRecord, error) {
	exists, err := m.db.TableExists(migrationTable)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	stmt, err := m.db.Prepare(
		"SELECT version, description, applied_at FROM " + migrationTable + " ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()
	rows, err := stmt.All(types.NoParams)
	if err != nil {
		return nil, err
	}
	records := make([]types.MigrationRecord, 0, len(rows))
	for _, row := range rows {
		vals := row.Values()
		if len(vals) != 3 {
			return nil, fmt.Errorf("unexpected migration record shape: %d columns", len(vals))
		}
		records = append(records, types.MigrationRecord{
			Version:     vals[0].Int64(),
			Description: vals[1].Text(),
			AppliedAt:   time.Unix(vals[2].Int64(), 0),
		})
	}
	return records, nil
}

// CreateTableIfNotExists executes ddl unless table already exists.
// Reports whether the table was created.
func (m *Migrator) CreateTableIfNotExists(table, ddl string) (bool, error) {
	exists, err := m.db.TableExists(table)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := m.db.Exec(ddl); err != nil {
		return false, err
	}
	return true, nil
}

// AddColumnIfNotExists adds a column unless one with that name is
// already present. Reports whether the column was added.
func (m *Migrator) AddColumnIfNotExists(table, column, definition string) (bool, error) {
	if !validIdent(table) || !validIdent(column) {
		return false, fmt.Errorf("%w: invalid identifier", types.ErrInvalidScope)
	}
	cols, err := m.db.TableColumns(table)
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if c.Name == column {
			return false, nil
		}
	}
	_, err = m.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	if err != nil {
		return false, err
	}
	return true, nil
}

// apply runs one migration and records it. Caller owns the transaction.
func (m *Migrator) apply(mig types.Migration) error {
	if _, err := m.db.Exec(mig.SQL); err != nil {
		return err
	}
	_, err := m.db.Run(
		"INSERT INTO "+migrationTable+" (version, description, applied_at) VALUES (?, ?, ?)",
		types.List(mig.Version, mig.Description, time.Now().Unix()),
	)
	return err
}

// sortedMigrations validates the batch and returns an ascending copy.
func sortedMigrations(migrations []types.Migration) ([]types.Migration, error) {
	sorted := make([]types.Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	for i, mig := range sorted {
		if mig.Version <= 0 {
			return nil, fmt.Errorf("%w: version must be positive, got %d",
				types.ErrMigrationFailed, mig.Version)
		}
		if i > 0 && sorted[i-1].Version == mig.Version {
			return nil, fmt.Errorf("%w: duplicate version %d",
				types.ErrMigrationFailed, mig.Version)
		}
	}
	return sorted, nil
}
