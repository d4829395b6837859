// Root command for the sqlkit CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/sqlkit/internal/paths"
	"github.com/mesh-intelligence/sqlkit/pkg/sqlkit"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDatabase  string
	flagReadOnly  bool
	flagJSON      bool
)

// Config values loaded from config.yaml. Set by PersistentPreRunE so
// all subcommands can use them.
var (
	configDatabase      string
	configBusyTimeoutMS int
	configCacheSize     int
)

var rootCmd = &cobra.Command{
	Use:     "sqlkit",
	Short:   "sqlkit is a SQLite database toolkit",
	Version: sqlkit.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDatabase = cfg.GetString(cfgKeyDatabase)
		configBusyTimeoutMS = cfg.GetInt(cfgKeyBusyTimeoutMS)
		configCacheSize = cfg.GetInt(cfgKeyCacheSize)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "db", "", "database file (default: $(CWD)/sqlkit.db)")
	rootCmd.PersistentFlags().BoolVar(&flagReadOnly, "readonly", false, "open the database read-only")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(pragmaCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(restoreCmd)
}

// resolveDatabasePath returns the database file following the precedence:
// --db flag > config.yaml database > SQLKIT_DB env > default $(CWD)/sqlkit.db.
func resolveDatabasePath() (string, error) {
	return paths.ResolveDatabasePath(flagDatabase, configDatabase)
}

// resolveConfigDir returns the configuration directory following the precedence:
// --config-dir flag > SQLKIT_CONFIG_DIR env > DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
