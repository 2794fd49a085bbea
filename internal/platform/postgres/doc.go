// Package postgres provides PostgreSQL implementations of the store
// interfaces on top of database/sql and the pgx stdlib driver. Every store
// accepts a store.DBTX so it can run against a pool or a transaction.
package postgres
