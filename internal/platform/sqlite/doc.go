// Package sqlite provides embedded SQLite implementations of the storage
// interfaces in internal/store, backed by the pure-Go modernc.org/sqlite
// driver.
//
// Every transaction begins IMMEDIATE and the pool holds a single connection,
// so writers are serialized database-wide. Timestamps are stored as unix
// milliseconds and calendar dates as YYYY-MM-DD text.
package sqlite
