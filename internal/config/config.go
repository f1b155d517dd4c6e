// Package config loads runtime settings for the Topaz commands from an
// optional YAML file and TOPAZ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/topaz-sim/internal/engine"
)

// Config holds settings shared by the server and batch commands.
type Config struct {
	Addr        string   `yaml:"addr"`
	DBPath      string   `yaml:"db_path"`
	Seed        int64    `yaml:"seed"`
	Companies   int      `yaml:"companies"`
	Allocation  string   `yaml:"allocation"`
	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`

	// Requests per hour per client on the simulate and step endpoints.
	RateLimit int `yaml:"rate_limit_per_hour"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:       ":8080",
		DBPath:     "data/topaz.db",
		Seed:       42,
		Companies:  engine.DefaultCompanies,
		Allocation: string(engine.Simultaneous),
		LogLevel:   "info",
		RateLimit:  600,
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TOPAZ_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("TOPAZ_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("TOPAZ_ALLOCATION"); v != "" {
		c.Allocation = v
	}
	if v := os.Getenv("TOPAZ_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TOPAZ_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = c.CORSOrigins[:0]
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}
	if v := os.Getenv("TOPAZ_SEED"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TOPAZ_SEED: %w", err)
		}
		c.Seed = n
	}
	if v := os.Getenv("TOPAZ_COMPANIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TOPAZ_COMPANIES: %w", err)
		}
		c.Companies = n
	}
	if v := os.Getenv("TOPAZ_RATE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TOPAZ_RATE_LIMIT: %w", err)
		}
		c.RateLimit = n
	}
	return nil
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the settings are usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	}
	if c.Companies < 1 {
		return fmt.Errorf("%w: companies must be at least 1, got %d", ErrInvalid, c.Companies)
	}
	switch engine.Allocation(c.Allocation) {
	case engine.Simultaneous, engine.Sequential:
	default:
		return fmt.Errorf("%w: unknown allocation %q", ErrInvalid, c.Allocation)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("%w: rate_limit_per_hour must be positive", ErrInvalid)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}
