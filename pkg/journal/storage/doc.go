// Package storage provides storage backends for journal records.
//
// # Backends
//
//   - SQLite: embedded database, selectable between the pure Go
//     modernc.org/sqlite driver ("sqlite", the default) and the cgo
//     github.com/mattn/go-sqlite3 driver ("sqlite3")
//   - Memory: in-process storage for tests and ephemeral runs
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:        "data/journal.db",
//	    Driver:      storage.DriverModernc,
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
// Records are ordered by recorded_at, stored as Unix nanoseconds, and then
// by insertion sequence.
package storage
