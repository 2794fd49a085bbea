package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Mail     MailConfig     `mapstructure:"mail" validate:"required"`
	Reminder ReminderConfig `mapstructure:"reminder"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BaseURL is used to build links in outgoing email.
	BaseURL                string `mapstructure:"base_url" validate:"required,url"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret              string `mapstructure:"jwt_secret" validate:"required,min=32"`
	SessionLifetimeMinutes int    `mapstructure:"session_lifetime_minutes" validate:"gt=0"`
	CookieName             string `mapstructure:"cookie_name" validate:"required"`
	CookieSecure           bool   `mapstructure:"cookie_secure"`
	BCryptCost             int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// MailConfig selects and configures the outgoing mail transport.
type MailConfig struct {
	Transport string `mapstructure:"transport" validate:"required,oneof=smtp log"`
	Host      string `mapstructure:"host" validate:"required_if=Transport smtp"`
	Port      int    `mapstructure:"port" validate:"omitempty,gt=0,lt=65536"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from" validate:"required,email"`
	Security  string `mapstructure:"security" validate:"oneof=none starttls tls"`
}

// ReminderConfig controls the deadline reminder sweeper.
type ReminderConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes" validate:"gt=0"`
	WindowHours     int  `mapstructure:"window_hours" validate:"gt=0"`
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// SessionLifetime returns how long issued session tokens stay valid.
func (c AuthConfig) SessionLifetime() time.Duration {
	return time.Duration(c.SessionLifetimeMinutes) * time.Minute
}

// Interval returns the time between reminder sweeps.
func (c ReminderConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Window returns how far ahead of a due date reminders are sent.
func (c ReminderConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}
