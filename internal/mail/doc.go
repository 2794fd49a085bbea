// Package mail renders and delivers the transactional emails sent when tasks
// are assigned, change status, approach their deadline or when an admin
// broadcasts a message.
//
// Rendering and delivery are separate: a Dispatcher turns typed email data
// into a Message using embedded templates and hands it to a Sender. The SMTP
// sender speaks to a real relay; the log sender only records what would have
// been sent and is the default for local development.
package mail
