// Package service contains the application use cases: task lifecycle,
// comments, notifications, broadcast email and user administration.
//
// Services receive their stores, mailer and logger through constructor
// injection and never depend on a concrete backend. Every public method
// authorizes the caller through the policy package, validates input and
// returns *domain.Error values whose kind the API layer maps to a status
// code.
//
// Mutations have two phases. The primary write either succeeds or the call
// fails. Notifications and emails that follow it are best-effort: each
// attempt is recorded in an Outcome, failures are logged and never turn a
// successful mutation into an error.
package service
