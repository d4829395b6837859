// Query command runs a statement and prints its rows.
package main

import (
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <sql> [param...]",
	Short: "Run a query and print the result rows",
	Long: `Query runs a SQL statement and prints every resulting row.

Parameters bind positionally; each one is parsed as JSON where possible
so numbers, booleans and null keep their types.

Example:
  sqlkit query 'SELECT * FROM users'
  sqlkit query 'SELECT * FROM users WHERE id = ?' 42
  sqlkit --json query 'SELECT name, email FROM users'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	stmt, err := db.Prepare(args[0])
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows, err := stmt.All(parseParams(args[1:]))
	if err != nil {
		return err
	}
	return printRows(rows)
}
