// Dump and restore commands move whole databases through SQL text.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagDumpOut string

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the database as executable SQL",
	Long: `Dump writes the schema and contents as a SQL batch that restores
the database when fed to restore, or to any SQLite shell.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		data, err := db.Serialize()
		if err != nil {
			return err
		}

		if flagDumpOut != "" {
			return os.WriteFile(flagDumpOut, data, 0o644)
		}
		fmt.Print(string(data))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Execute a SQL dump against the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read dump: %w", err)
		}

		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		return db.Deserialize(data)
	},
}

func init() {
	dumpCmd.Flags().StringVarP(&flagDumpOut, "output", "o", "", "write the dump to a file instead of stdout")
}
