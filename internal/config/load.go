package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TASKDESK_SERVER_PORT overrides server.port.
const EnvPrefix = "TASKDESK"

var defaults = map[string]any{
	"server.port":                     8080,
	"server.log_level":                "info",
	"server.base_url":                 "http://localhost:8080",
	"server.shutdown_timeout_seconds": 15,
	"database.driver":                 "postgres",
	"database.url":                    "",
	"database.max_open_conns":         10,
	"auth.jwt_secret":                 "",
	"auth.session_lifetime_minutes":   60 * 24,
	"auth.cookie_name":                "taskdesk_session",
	"auth.cookie_secure":              false,
	"auth.bcrypt_cost":                10,
	"mail.transport":                  "log",
	"mail.host":                       "",
	"mail.port":                       587,
	"mail.username":                   "",
	"mail.password":                   "",
	"mail.from":                       "noreply@taskdesk.local",
	"mail.security":                   "starttls",
	"reminder.enabled":                true,
	"reminder.interval_minutes":       60,
	"reminder.window_hours":           24,
}

// Load reads configuration from defaults, the optional file at path and the
// environment, in increasing order of precedence. An empty path skips the
// file. The returned config has passed validation.
func Load(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
