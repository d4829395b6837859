package types

import "time"

// MemoryPath opens a private in-memory database instead of a file.
const MemoryPath = ":memory:"

// Options configures how a database is opened.
type Options struct {
	// ReadOnly opens the database read-only; startup pragmas that write
	// are skipped. Overrides Create and ReadWrite.
	ReadOnly bool
	// Create creates the database file if it does not exist.
	Create bool
	// ReadWrite opens the database for reading and writing.
	ReadWrite bool
	// BusyTimeout is passed through to the engine's busy handler; the
	// access layer never retries on its own.
	BusyTimeout time.Duration
	// StatementCacheSize bounds the prepared-statement cache. Zero means
	// DefaultStatementCacheSize.
	StatementCacheSize int
}

// DefaultStatementCacheSize bounds the LRU statement cache when no size
// is configured.
const DefaultStatementCacheSize = 128

// DefaultOptions returns the standard read-write, create-if-missing
// configuration.
func DefaultOptions() Options {
	return Options{
		Create:             true,
		ReadWrite:          true,
		BusyTimeout:        5 * time.Second,
		StatementCacheSize: DefaultStatementCacheSize,
	}
}

// TxMode selects the locking behavior of a top-level transaction.
type TxMode string

const (
	// Deferred acquires locks lazily on first use.
	Deferred TxMode = "deferred"
	// Immediate acquires the write lock at begin.
	Immediate TxMode = "immediate"
	// Exclusive acquires an exclusive lock at begin, blocking readers.
	Exclusive TxMode = "exclusive"
)

// ParseTxMode maps a mode string to a TxMode. Unknown input maps to
// Deferred; the permissive default is part of the contract.
func ParseTxMode(s string) TxMode {
	switch TxMode(s) {
	case Immediate:
		return Immediate
	case Exclusive:
		return Exclusive
	default:
		return Deferred
	}
}

// Keyword returns the SQL keyword for the mode.
func (m TxMode) Keyword() string {
	switch m {
	case Immediate:
		return "IMMEDIATE"
	case Exclusive:
		return "EXCLUSIVE"
	default:
		return "DEFERRED"
	}
}
