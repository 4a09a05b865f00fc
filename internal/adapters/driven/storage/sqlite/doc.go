// Package sqlite provides a SQLite-backed implementation of the token store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It is selected with token_store = "sqlite"
// and lets the session credential survive a restart of the server process, so the
// user does not have to approve access in the browser again.
//
// Only the current credential is stored. Saving a new one replaces the old row;
// no history is kept.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a .up.sql file that records its own
// version in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.budget-mcp/data/session.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
