// Package domain contains the core entities of taskdesk: tasks, users,
// comments and notifications, together with the validation rules and the
// closed error kinds shared by every layer. It has no knowledge of storage
// or transport.
package domain
