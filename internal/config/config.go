// Package config loads service configuration from config.yaml with
// LIFECYCLE_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Postmark PostmarkConfig `mapstructure:"postmark"`
	Clerk    ClerkConfig    `mapstructure:"clerk"`
	Runs     RunsConfig     `mapstructure:"runs"`
	Send     SendConfig     `mapstructure:"send"`
}

// APIConfig holds HTTP server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	PoolMin        int32         `mapstructure:"pool_min"`
	PoolMax        int32         `mapstructure:"pool_max"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

// AuthConfig holds the inbound API key.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// PostmarkConfig holds the mail gateway settings.
type PostmarkConfig struct {
	ServiceURL  string        `mapstructure:"service_url"`
	APIKey      string        `mapstructure:"api_key"`
	FromAddress string        `mapstructure:"from_address"`
	BCCAddress  string        `mapstructure:"bcc_address"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ClerkConfig holds the identity provider settings.
type ClerkConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RunsConfig holds the optional runs-service settings. An empty base URL
// disables run tracking.
type RunsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SendConfig holds send pipeline policy settings.
type SendConfig struct {
	AdminEmail  string   `mapstructure:"admin_email"`
	AdminEvents []string `mapstructure:"admin_events"`
}

// Load reads configuration from the given config directory path. It looks
// for a file named "config.yaml" in that directory. Environment variables
// with prefix LIFECYCLE_ override file values; for example,
// LIFECYCLE_DATABASE_URL overrides database.url.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("LIFECYCLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when the environment supplies everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 3005)
	v.SetDefault("api.read_timeout", 15*time.Second)
	v.SetDefault("api.write_timeout", 60*time.Second)

	v.SetDefault("database.pool_min", 2)
	v.SetDefault("database.pool_max", 10)
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("postmark.timeout", 30*time.Second)
	v.SetDefault("clerk.timeout", 15*time.Second)
	v.SetDefault("runs.timeout", 10*time.Second)

	v.SetDefault("send.admin_events", []string{
		"signup_notification", "signin_notification", "user_active",
	})
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	return nil
}
