// Package config loads the service configuration from a YAML file with
// environment overrides. The session secret and database path have no
// built-in defaults on purpose: they must be provided at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// Defaults applied when neither file nor environment provides a value.
const (
	DefaultListenAddr    = ":8080"
	DefaultSessionTTL    = 24 * time.Hour
	DefaultCacheTTL      = 30 * time.Second
	DefaultLoginRate     = 1.0 // login attempts per second per client
	defaultAllowedOrigin = "*"
)

// Config is the full service configuration.
type Config struct {
	ListenAddr     string   `yaml:"listen_addr"`
	DatabasePath   string   `yaml:"database_path"`
	Debug          bool     `yaml:"debug"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LoginRate      float64  `yaml:"login_rate"`
	Session        Session  `yaml:"session"`
	Redis          Redis    `yaml:"redis"`
}

// Session configures the session cookies minted at login.
type Session struct {
	Secret string   `yaml:"secret"`
	TTL    Duration `yaml:"ttl"`
}

// Redis configures the optional read cache. An empty Addr disables it.
type Redis struct {
	Addr     string   `yaml:"addr"`
	Password string   `yaml:"password"`
	CacheTTL Duration `yaml:"cache_ttl"`
}

// Duration parses YAML scalars like "24h" into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration must be >= 0, got %q", raw)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads the YAML file at path (skipped when path is empty or absent),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else {
			dec := yaml.NewDecoder(strings.NewReader(string(data)))
			dec.KnownFields(true)
			if err := dec.Decode(cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid SESSION_TTL: %q", v)
		}
		c.Session.TTL = Duration(d)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("LOGIN_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate <= 0 {
			return fmt.Errorf("invalid LOGIN_RATE: %q", v)
		}
		c.LoginRate = rate
	}
	if v := os.Getenv("DEBUG"); v != "" {
		dbg, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DEBUG: %q", v)
		}
		c.Debug = dbg
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = Duration(DefaultSessionTTL)
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = Duration(DefaultCacheTTL)
	}
	if c.LoginRate == 0 {
		c.LoginRate = DefaultLoginRate
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{defaultAllowedOrigin}
	}
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return errors.New("database_path is required")
	}
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("session.secret is required")
	}
	if c.LoginRate < 0 {
		return errors.New("login_rate must be >= 0")
	}
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
