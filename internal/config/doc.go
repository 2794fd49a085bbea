// Package config loads taskdesk settings from defaults, an optional config
// file and TASKDESK_ environment variables, and validates the result before
// any component is constructed.
package config
