// Package paths resolves configuration and database file locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// CWD-relative defaults used when no override is active.
const (
	DefaultConfigDirName = ".sqlkit"
	DefaultDatabaseName  = "sqlkit.db"
)

// Environment variable names for location overrides.
const (
	EnvConfigDir = "SQLKIT_CONFIG_DIR"
	EnvDatabase  = "SQLKIT_DB"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/sqlkit (fallback ~/.config/sqlkit)
// macOS:   ~/Library/Application Support/sqlkit
// Windows: %APPDATA%/sqlkit
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "sqlkit"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "sqlkit"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "sqlkit"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > SQLKIT_CONFIG_DIR env > DefaultConfigDir().
//
// If flag is non-empty it wins. Otherwise the SQLKIT_CONFIG_DIR environment
// variable is checked. If neither is set, the platform default is returned.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDatabasePath returns the database file path following the precedence
// chain: flag > configYAMLValue > SQLKIT_DB env > $(CWD)/sqlkit.db.
//
// The in-memory path ":memory:" passes through every stage untouched.
func ResolveDatabasePath(flag, configYAMLValue string) (string, error) {
	for _, candidate := range []string{flag, configYAMLValue, os.Getenv(EnvDatabase)} {
		if candidate == ":memory:" {
			return candidate, nil
		}
		if candidate != "" {
			return filepath.Abs(candidate)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDatabaseName), nil
}
