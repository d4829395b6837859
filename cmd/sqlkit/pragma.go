// Pragma command reads and writes engine configuration values.
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sqlkit/pkg/types"
)

var pragmaCmd = &cobra.Command{
	Use:   "pragma <name> [value]",
	Short: "Read or write an engine pragma",
	Long: `Pragma reads an engine configuration value, or writes one when a
value is given and prints the resulting setting.

Example:
  sqlkit pragma journal_mode
  sqlkit pragma user_version 5`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPragma,
}

func runPragma(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	name := args[0]

	var values []types.Value
	if len(args) == 2 {
		values, err = db.SetPragma(name, pragmaValue(args[1]))
	} else {
		values, err = db.Pragma(name)
	}
	if err != nil {
		return err
	}

	if flagJSON {
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = jsonValue(v)
		}
		return printJSON(out)
	}
	for _, v := range values {
		fmt.Println(v.String())
	}
	return nil
}

// pragmaValue interprets a CLI argument as an Integer when it parses as
// one, Text otherwise.
func pragmaValue(arg string) types.Value {
	if n, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return types.Integer(n)
	}
	return types.Text(arg)
}
