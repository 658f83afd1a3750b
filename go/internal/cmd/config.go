package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional yaml config file for tuning the gateway and the
// outbox relay. Database settings come from DB_* environment variables
// (see dbconfig); everything here has a working default.
type Config struct {
	Nats struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`
	Gateway struct {
		RepushIntervalSec int `yaml:"repush_interval_sec"`
	} `yaml:"gateway"`
	Outbox struct {
		PollIntervalMS int `yaml:"poll_interval_ms"`
		BatchSize      int `yaml:"batch_size"`
	} `yaml:"outbox"`
}

func defaultConfig() *Config {
	var c Config
	c.Nats.URL = getEnv("NATS_URL", "nats://localhost:4222")
	c.Gateway.RepushIntervalSec = 30
	c.Outbox.PollIntervalMS = 500
	c.Outbox.BatchSize = 100
	return &c
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

func (c *Config) repushInterval() time.Duration {
	return time.Duration(c.Gateway.RepushIntervalSec) * time.Second
}

func (c *Config) outboxPollInterval() time.Duration {
	return time.Duration(c.Outbox.PollIntervalMS) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

