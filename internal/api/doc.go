// Package api adapts HTTP requests to the task, comment, notification and
// admin services. Handlers decode and validate JSON, take the principal set
// by the authentication middleware and map domain error kinds to status
// codes in one place, without exposing raw error text.
package api
