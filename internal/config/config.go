package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port          string   `yaml:"port"`
		AdminUser     string   `yaml:"adminUser"`
		AdminPassword string   `yaml:"adminPassword"`
		CORSOrigins   []string `yaml:"corsOrigins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		SessionTTL          string `yaml:"sessionTTL"`
		DefaultMaxQuestions int    `yaml:"defaultMaxQuestions"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path. A missing file yields a zero config so
// the server can still run on the fallback catalog.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.withDefaults(), nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Server.AdminUser == "" {
		c.Server.AdminUser = "admin"
	}
	if c.Quiz.DefaultMaxQuestions <= 0 {
		c.Quiz.DefaultMaxQuestions = 25
	}
	return c
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
