// Package sqlite provides a SQLite-backed run history ledger.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each pipeline run is stored as one row in
// the runs table plus one run_files row per processed file.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory and applied on open.
//
// # Data Location
//
// By default, the database is stored at ~/.sftgen/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
