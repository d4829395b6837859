// Exec command runs statements for side effect.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

var execCmd = &cobra.Command{
	Use:   "exec <sql> [param...]",
	Short: "Execute a statement for side effect",
	Long: `Exec runs a SQL statement and reports affected rows.

With parameters the SQL must be a single statement; placeholders follow
the engine's styles (?, ?N, :name, @name, $name). Without parameters the
SQL may be a batch of several statements separated by semicolons.

Example:
  sqlkit exec 'CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)'
  sqlkit exec 'INSERT INTO users (name) VALUES (?)' alice`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	sqlText := args[0]

	var res types.RunResult
	if len(args) == 1 {
		// No parameters: run as a batch so multi-statement input works.
		res, err = db.Exec(sqlText)
	} else {
		res, err = db.Run(sqlText, parseParams(args[1:]))
	}
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]int64{
			"changes":        res.Changes,
			"last_insert_id": res.LastInsertID,
		})
	}
	fmt.Printf("changes: %d, last insert id: %d\n", res.Changes, res.LastInsertID)
	return nil
}
