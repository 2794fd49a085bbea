// Package store defines the persistence interfaces for tasks, users,
// notifications and comments, the sentinel errors every implementation
// returns, and the transaction helper shared by the SQL backends.
package store
