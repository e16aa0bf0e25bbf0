// Package config loads the agave CLI configuration from an optional YAML
// file and AGAVE_* environment variables. Environment values win over the
// file, and command-line flags win over both.
package config

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache modes.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the full CLI configuration.
type Config struct {
	Name  string      `yaml:"name"`
	Log   LogConfig   `yaml:"log"`
	HTTP  HTTPConfig  `yaml:"http"`
	MCP   MCPConfig   `yaml:"mcp"`
	Cache CacheConfig `yaml:"cache"`
	Redis RedisConfig `yaml:"redis"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

type MCPConfig struct {
	// Transport is stdio or sse.
	Transport string `yaml:"transport"`
	Addr      string `yaml:"addr"`
}

type CacheConfig struct {
	Mode    string        `yaml:"mode"`
	TTL     time.Duration `yaml:"ttl"`
	Lock    bool          `yaml:"lock"`
	LockTTL time.Duration `yaml:"lock_ttl"`
	// Key is a base64 AES-256 key. When set, cached outputs are encrypted.
	Key string `yaml:"key"`
	// FallbackKeys still decrypt entries written before a key rotation.
	FallbackKeys []string `yaml:"fallback_keys"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:   LogConfig{Level: "info", Format: "text"},
		HTTP:  HTTPConfig{Addr: ":8080", Metrics: true},
		MCP:   MCPConfig{Transport: "stdio", Addr: ":8081"},
		Cache: CacheConfig{Mode: CacheNone, LockTTL: 30 * time.Second},
		Redis: RedisConfig{Addr: "localhost:6379", Prefix: "agave:cache:"},
	}
}

// LookupFunc reads one environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Load reads path (when not empty) over the defaults and applies the process
// environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment.
func LoadWithEnv(path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	strs := map[string]*string{
		"AGAVE_NAME":           &cfg.Name,
		"AGAVE_LOG_LEVEL":      &cfg.Log.Level,
		"AGAVE_LOG_FORMAT":     &cfg.Log.Format,
		"AGAVE_HTTP_ADDR":      &cfg.HTTP.Addr,
		"AGAVE_MCP_TRANSPORT":  &cfg.MCP.Transport,
		"AGAVE_MCP_ADDR":       &cfg.MCP.Addr,
		"AGAVE_CACHE":          &cfg.Cache.Mode,
		"AGAVE_REDIS_ADDR":     &cfg.Redis.Addr,
		"AGAVE_REDIS_PASSWORD": &cfg.Redis.Password,
		"AGAVE_REDIS_PREFIX":   &cfg.Redis.Prefix,
		"AGAVE_CACHE_KEY":      &cfg.Cache.Key,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"AGAVE_CACHE_TTL": &cfg.Cache.TTL,
		"AGAVE_LOCK_TTL":  &cfg.Cache.LockTTL,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	bools := map[string]*bool{
		"AGAVE_HTTP_METRICS": &cfg.HTTP.Metrics,
		"AGAVE_CACHE_LOCK":   &cfg.Cache.Lock,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}

	if v, ok := lookup("AGAVE_REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("AGAVE_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = db
	}
	return nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Cache.Mode {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("invalid cache mode %q (want none, memory or redis)", c.Cache.Mode)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("invalid mcp transport %q (want stdio or sse)", c.MCP.Transport)
	}
	if c.Cache.TTL < 0 || c.Cache.LockTTL < 0 {
		return errors.New("cache durations must not be negative")
	}
	if _, _, err := c.Cache.Keys(); err != nil {
		return err
	}
	return nil
}

// Keys decodes the cache encryption keys. active is nil when encryption is off.
func (c CacheConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if c.Key == "" {
		if len(c.FallbackKeys) > 0 {
			return nil, nil, errors.New("cache fallback keys need an active key")
		}
		return nil, nil, nil
	}
	if active, err = decodeKey(c.Key); err != nil {
		return nil, nil, fmt.Errorf("cache key: %w", err)
	}
	for i, k := range c.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("cache fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
