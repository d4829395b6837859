// Migrate command applies versioned schema migrations from a directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sqlkit/pkg/sqlite"
	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

var (
	flagMigrateTo     int64
	flagMigrateStatus bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [dir]",
	Short: "Apply pending schema migrations",
	Long: `Migrate applies every pending migration from a directory of SQL
files named <version>_<description>.sql, for example 001_create_users.sql.
Migrations run in ascending version order inside one transaction; on any
failure the database is left untouched.

With --status the applied migration records are printed instead.

Example:
  sqlkit migrate ./migrations
  sqlkit migrate ./migrations --to 3
  sqlkit migrate --status`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().Int64Var(&flagMigrateTo, "to", 0, "highest version to apply (default: all)")
	migrateCmd.Flags().BoolVar(&flagMigrateStatus, "status", false, "show applied migrations")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := sqlite.NewMigrator(db)

	if flagMigrateStatus {
		return printMigrationStatus(migrator)
	}
	if len(args) != 1 {
		return fmt.Errorf("migration directory required (or use --status)")
	}

	migrations, err := loadMigrationDir(args[0])
	if err != nil {
		return err
	}

	var version int64
	if flagMigrateTo > 0 {
		version, err = migrator.MigrateTo(migrations, flagMigrateTo)
	} else {
		version, err = migrator.Migrate(migrations)
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]int64{"schema_version": version})
	}
	fmt.Printf("schema version: %d\n", version)
	return nil
}

func printMigrationStatus(migrator types.Migrator) error {
	records, err := migrator.Records()
	if err != nil {
		return err
	}

	if flagJSON {
		type record struct {
			Version     int64  `json:"version"`
			Description string `json:"description"`
			AppliedAt   string `json:"applied_at"`
		}
		out := make([]record, len(records))
		for i, r := range records {
			out[i] = record{
				Version:     r.Version,
				Description: r.Description,
				AppliedAt:   r.AppliedAt.UTC().Format("2006-01-02T15:04:05Z"),
			}
		}
		return printJSON(out)
	}
	for _, r := range records {
		fmt.Printf("%d\t%s\t%s\n", r.Version, r.AppliedAt.UTC().Format("2006-01-02 15:04:05"), r.Description)
	}
	return nil
}

// loadMigrationDir reads every *.sql file named <version>_<description>.sql
// from dir. Files that do not match the pattern are an error rather than
// silently skipped.
func loadMigrationDir(dir string) ([]types.Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migration dir: %w", err)
	}

	var migrations []types.Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, description, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, types.Migration{
			Version:     version,
			SQL:         string(data),
			Description: description,
		})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// parseMigrationName splits <version>_<description>.sql.
func parseMigrationName(name string) (int64, string, error) {
	base := strings.TrimSuffix(name, ".sql")
	idx := strings.Index(base, "_")
	if idx <= 0 {
		return 0, "", fmt.Errorf("migration file %q: want <version>_<description>.sql", name)
	}
	version, err := strconv.ParseInt(base[:idx], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("migration file %q: bad version: %w", name, err)
	}
	return version, strings.ReplaceAll(base[idx+1:], "_", " "), nil
}
