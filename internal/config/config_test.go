package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "./data/rinkside.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.Equal(t, 0.1, cfg.Player.MinRate)
	assert.Equal(t, 4.0, cfg.Player.MaxRate)
	assert.Equal(t, 0.1, cfg.Player.ForwardEpsilon)
	assert.Equal(t, 250*time.Millisecond, cfg.Player.TickInterval)
	assert.Equal(t, 0.1, cfg.Player.ScrubMinRate)
	assert.Equal(t, 2.0, cfg.Player.ScrubMaxRate)
	assert.Equal(t, time.Second, cfg.Player.ScrubInactivity)
	assert.Equal(t, time.Second, cfg.Autosave.Debounce)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RINKSIDE_SERVER_PORT", "9999")
	t.Setenv("RINKSIDE_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			Host:         "127.0.0.1",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:              "./test.db",
			ConnectionTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Player: PlayerConfig{
			MinRate:         0.1,
			MaxRate:         4.0,
			ForwardEpsilon:  0.1,
			TickInterval:    250 * time.Millisecond,
			ScrubMinRate:    0.1,
			ScrubMaxRate:    2.0,
			ScrubInactivity: time.Second,
		},
		Autosave: AutosaveConfig{Debounce: time.Second},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "zero min rate", mutate: func(c *Config) { c.Player.MinRate = 0 }, wantErr: true},
		{name: "max below min", mutate: func(c *Config) { c.Player.MaxRate = 0.05 }, wantErr: true},
		{name: "zero scrub min", mutate: func(c *Config) { c.Player.ScrubMinRate = 0 }, wantErr: true},
		{name: "scrub max below min", mutate: func(c *Config) { c.Player.ScrubMaxRate = 0.05 }, wantErr: true},
		{name: "negative epsilon", mutate: func(c *Config) { c.Player.ForwardEpsilon = -1 }, wantErr: true},
		{name: "zero tick interval", mutate: func(c *Config) { c.Player.TickInterval = 0 }, wantErr: true},
		{name: "zero inactivity", mutate: func(c *Config) { c.Player.ScrubInactivity = 0 }, wantErr: true},
		{name: "zero debounce", mutate: func(c *Config) { c.Autosave.Debounce = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
