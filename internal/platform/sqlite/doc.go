// Package sqlite provides embedded SQLite implementations of the store
// interfaces using sqlx over the pure-Go modernc.org/sqlite driver. It backs
// local development and the store tests.
package sqlite
