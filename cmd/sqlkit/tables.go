// Tables command lists user tables.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List user tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		tables, err := db.Tables()
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(tables)
		}
		for _, table := range tables {
			fmt.Println(table)
		}
		return nil
	},
}
