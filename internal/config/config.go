// Package config loads the navigator configuration from file, environment,
// and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the complete navigator configuration.
//
// Sources, highest precedence first: environment variables (REPONAV_*),
// configuration file, defaults.
type Config struct {
	// Endpoint is the repository service base URL.
	Endpoint string `mapstructure:"endpoint" validate:"required,url"`

	// TokenPath is where the session token file lives.
	TokenPath string `mapstructure:"token_path" validate:"required"`

	// PageSize bounds children-listing pages.
	PageSize int `mapstructure:"page_size" validate:"gt=0,lte=1000"`

	// PollInterval is the delay between batch-action status polls.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"gt=0"`

	// RequestTimeout bounds each remote request.
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`

	// LogLevel is the minimum log level: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// LogFormat selects console or json log output.
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=console json"`

	// MetricsAddr is the listen address for the metrics endpoint. Empty
	// disables it.
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// Load reads configuration from an optional file path plus the environment,
// applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REPONAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default registered so environment overrides survive
	// Unmarshal.
	v.SetDefault("endpoint", "")
	v.SetDefault("metrics_addr", "")
	v.SetDefault("token_path", defaultTokenPath())
	v.SetDefault("page_size", 100)
	v.SetDefault("poll_interval", 2*time.Second)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file on the default search path is fine; an explicitly
	// named file must exist.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reponav")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "reponav")
}

func defaultTokenPath() string {
	return filepath.Join(configDir(), "token.json")
}
