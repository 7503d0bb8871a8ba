package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port         int    `toml:"port"`
	LogLevel     string `toml:"log_level"`
	DashboardURL string `toml:"dashboard_url"` // Base URL verification links point at
}

type JWTConfig struct {
	Secret          string `toml:"secret"`            // For session token signing
	SessionHours    int    `toml:"session_hours"`     // Admin session lifetime
	VerifyLinkHours int    `toml:"verify_link_hours"` // Email verification link lifetime
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

type RevalidateConfig struct {
	URL    string `toml:"url"`    // Rendering layer revalidation endpoint
	Secret string `toml:"secret"` // Shared secret sent with each signal
}

type LimitsConfig struct {
	CooldownSeconds      int `toml:"cooldown_seconds"`       // Sensitive-operation window
	RollbackTTLMinutes   int `toml:"rollback_ttl_minutes"`   // Undo token lifetime
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"` // Token store housekeeping
	RequestsPerMinute    int `toml:"requests_per_minute"`    // Per-IP API rate limit
}

type LocaleConfig struct {
	Dir string `toml:"dir"`
}

// BootstrapConfig seeds the first administrator when the store is empty.
type BootstrapConfig struct {
	AdminEmail    string `toml:"admin_email"`
	AdminPassword string `toml:"admin_password"`
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	JWT        JWTConfig        `toml:"jwt"`
	Storage    StorageConfig    `toml:"storage"`
	Revalidate RevalidateConfig `toml:"revalidate"`
	Limits     LimitsConfig     `toml:"limits"`
	Locale     LocaleConfig     `toml:"locale"`
	Bootstrap  BootstrapConfig  `toml:"bootstrap"`
}

func LoadConfig(filepath string) (*Config, error) {
	var config Config

	// Set default values
	config.Server.Port = 3000
	config.Server.LogLevel = "info"
	config.JWT.SessionHours = 24
	config.JWT.VerifyLinkHours = 24
	config.Storage.DataDir = "./data"
	config.Limits.CooldownSeconds = 60
	config.Limits.RollbackTTLMinutes = 5
	config.Limits.SweepIntervalSeconds = 60
	config.Limits.RequestsPerMinute = 100
	config.Locale.Dir = "./locales"
	config.Server.DashboardURL = "http://localhost:3000"

	// Load config file
	_, err := toml.DecodeFile(filepath, &config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return &config, nil
}

// Validate checks the fields the server cannot run without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Limits.CooldownSeconds <= 0 {
		return fmt.Errorf("cooldown_seconds must be positive")
	}
	if c.Limits.RollbackTTLMinutes <= 0 {
		return fmt.Errorf("rollback_ttl_minutes must be positive")
	}
	return nil
}

// Cooldown returns the sensitive-operation window as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Limits.CooldownSeconds) * time.Second
}

// RollbackTTL returns the undo token lifetime as a duration.
func (c *Config) RollbackTTL() time.Duration {
	return time.Duration(c.Limits.RollbackTTLMinutes) * time.Minute
}

// SweepInterval returns the token store housekeeping interval.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Limits.SweepIntervalSeconds) * time.Second
}
