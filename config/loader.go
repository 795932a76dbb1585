package config

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads an optional .env file, then parses the environment into Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("no .env file loaded: %v", err)
	} else {
		logrus.Info("loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ProviderURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid PROVIDER_URL: %q", c.ProviderURL)
	}
	if c.ProviderHeaderTimeout <= 0 {
		return fmt.Errorf("invalid PROVIDER_HEADER_TIMEOUT: %s (must be positive)", c.ProviderHeaderTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid POLL_INTERVAL: %s (must be positive)", c.PollInterval)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("invalid RETRY_DELAY: %s (must be positive)", c.RetryDelay)
	}
	if c.DegradedThreshold < 1 {
		return fmt.Errorf("invalid DEGRADED_THRESHOLD: %d (must be >= 1)", c.DegradedThreshold)
	}
	if c.ToggleDebounce < 0 {
		return fmt.Errorf("invalid TOGGLE_DEBOUNCE: %s (must be non-negative)", c.ToggleDebounce)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid METRICS_PORT: %d (must be 0-65535)", c.MetricsPort)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid LOG_FORMAT: %q (must be text or json)", c.LogFormat)
	}
	return nil
}

// ConfigureLogging applies LogLevel and LogFormat to the standard logrus
// logger. Call after Validate.
func (c *Config) ConfigureLogging() {
	if lvl, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logrus.SetLevel(lvl)
	}
	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
