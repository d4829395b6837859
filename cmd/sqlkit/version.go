// Version command for the sqlkit CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sqlkit/pkg/sqlkit"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sqlkit version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sqlkit", sqlkit.Version)
	},
}
