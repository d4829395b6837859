// Schema command shows table definitions.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [table]",
	Short: "Show table definitions",
	Long: `Schema prints the CREATE statement of a table, or of every user
table when no table is named. With --json the columns and indexes are
included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	var tables []string
	if len(args) == 1 {
		tables = args
	} else {
		tables, err = db.Tables()
		if err != nil {
			return err
		}
	}

	if flagJSON {
		type tableSchema struct {
			Table   string             `json:"table"`
			SQL     string             `json:"sql"`
			Columns []types.ColumnInfo `json:"columns"`
			Indexes []types.IndexInfo  `json:"indexes"`
		}
		out := make([]tableSchema, 0, len(tables))
		for _, table := range tables {
			ddl, ok, err := db.TableSQL(table)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", types.ErrNoSuchTable, table)
			}
			cols, err := db.TableColumns(table)
			if err != nil {
				return err
			}
			indexes, err := db.TableIndexes(table)
			if err != nil {
				return err
			}
			out = append(out, tableSchema{Table: table, SQL: ddl, Columns: cols, Indexes: indexes})
		}
		return printJSON(out)
	}

	for _, table := range tables {
		ddl, ok, err := db.TableSQL(table)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", types.ErrNoSuchTable, table)
		}
		fmt.Println(ddl + ";")
	}
	return nil
}
