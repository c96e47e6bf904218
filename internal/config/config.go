// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/rinkside.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultPlayerMinRate             = 0.1
	defaultPlayerMaxRate             = 4.0
	defaultPlayerForwardEpsilon      = 0.1
	defaultPlayerTickInterval        = 250 * time.Millisecond
	defaultScrubMinRate              = 0.1
	defaultScrubMaxRate              = 2.0
	defaultScrubInactivityWindow     = 1000 * time.Millisecond
	defaultAutosaveDebounce          = 1 * time.Second
	envPrefix                        = "RINKSIDE"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Player   PlayerConfig
	Autosave AutosaveConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// PlayerConfig holds playback and scrubbing tunables
type PlayerConfig struct {
	MinRate         float64       // lowest allowed playback rate
	MaxRate         float64       // highest allowed playback rate
	ForwardEpsilon  float64       // seconds; seeks below this are not forwarded to the clock
	TickInterval    time.Duration // how often the media clock reports position
	ScrubMinRate    float64
	ScrubMaxRate    float64
	ScrubInactivity time.Duration // quiet period that ends a scrub session
}

// AutosaveConfig holds persistence bridge configuration
type AutosaveConfig struct {
	Debounce time.Duration
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	// Load .env file if present (optional, won't error if missing)
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	// Config file settings
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/rinkside")

	// Environment variable settings
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	// Database defaults
	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)

	// Logging defaults
	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	// Player defaults
	v.SetDefault("player.minrate", defaultPlayerMinRate)
	v.SetDefault("player.maxrate", defaultPlayerMaxRate)
	v.SetDefault("player.forwardepsilon", defaultPlayerForwardEpsilon)
	v.SetDefault("player.tickinterval", defaultPlayerTickInterval)
	v.SetDefault("player.scrubminrate", defaultScrubMinRate)
	v.SetDefault("player.scrubmaxrate", defaultScrubMaxRate)
	v.SetDefault("player.scrubinactivity", defaultScrubInactivityWindow)

	// Autosave defaults
	v.SetDefault("autosave.debounce", defaultAutosaveDebounce)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if c.Player.MinRate <= 0 {
		return fmt.Errorf("invalid minimum playback rate: %f (must be > 0)", c.Player.MinRate)
	}
	if c.Player.MaxRate < c.Player.MinRate {
		return fmt.Errorf("invalid playback rate range: max %f below min %f", c.Player.MaxRate, c.Player.MinRate)
	}
	if c.Player.ScrubMinRate <= 0 {
		return fmt.Errorf("invalid minimum scrub rate: %f (must be > 0)", c.Player.ScrubMinRate)
	}
	if c.Player.ScrubMaxRate < c.Player.ScrubMinRate {
		return fmt.Errorf("invalid scrub rate range: max %f below min %f", c.Player.ScrubMaxRate, c.Player.ScrubMinRate)
	}
	if c.Player.ForwardEpsilon < 0 {
		return fmt.Errorf("invalid forward epsilon: %f (must be >= 0)", c.Player.ForwardEpsilon)
	}
	if c.Player.TickInterval <= 0 {
		return fmt.Errorf("invalid tick interval: %v (must be > 0)", c.Player.TickInterval)
	}
	if c.Player.ScrubInactivity <= 0 {
		return fmt.Errorf("invalid scrub inactivity window: %v (must be > 0)", c.Player.ScrubInactivity)
	}
	if c.Autosave.Debounce <= 0 {
		return fmt.Errorf("invalid autosave debounce: %v (must be > 0)", c.Autosave.Debounce)
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
