// Info command summarizes the open database.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show database size and version metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close()

		info, err := db.Info()
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(map[string]any{
				"file":           db.Filename(),
				"tables":         info.TableCount,
				"indexes":        info.IndexCount,
				"page_count":     info.PageCount,
				"page_size":      info.PageSize,
				"size_bytes":     info.SizeBytes,
				"engine_version": info.EngineVersion,
			})
		}
		fmt.Printf("file:           %s\n", db.Filename())
		fmt.Printf("tables:         %d\n", info.TableCount)
		fmt.Printf("indexes:        %d\n", info.IndexCount)
		fmt.Printf("size:           %d bytes (%d pages of %d)\n", info.SizeBytes, info.PageCount, info.PageSize)
		fmt.Printf("engine version: %s\n", info.EngineVersion)
		return nil
	},
}
