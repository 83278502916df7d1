// Package config manages application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sproutsync/sprout"
)

// ErrMissingAPIKey indicates no SproutVideo API key was configured.
var ErrMissingAPIKey = errors.New("api_key is required (set SPROUTSYNC_API_KEY)")

// Config holds all application configuration for the SproutVideo connector.
type Config struct {
	// APIKey is the SproutVideo API key sent with every request
	APIKey string `json:"api_key"`
	// BaseURL is the API root endpoints are appended to
	BaseURL string `json:"base_url"`
	// Timeout is the maximum time to wait for a single API request
	Timeout time.Duration `json:"timeout"`
	// UserAgent is sent with every API request
	UserAgent string `json:"user_agent"`
	// CacheEnabled lets the fetcher serve GET responses from memory within their TTL
	CacheEnabled bool `json:"cache_enabled"`
	// RateLimit is requests per second allowed against the API host (0 = unlimited)
	RateLimit float64 `json:"rate_limit"`

	// StorePath is the JSON file holding synced rows and sync state
	StorePath string `json:"store_path"`
	// MySQLDSN selects the MySQL store instead of the JSON file when set
	MySQLDSN string `json:"mysql_dsn"`

	// ListenAddr is the address the HTTP surface binds to
	ListenAddr string `json:"listen_addr"`
	// MaxPages bounds the pages fetched per sync run (0 = until complete)
	MaxPages int `json:"max_pages"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      sprout.DefaultBaseURL,
		Timeout:      30 * time.Second,
		UserAgent:    "sproutsync/1.0",
		CacheEnabled: true,
		RateLimit:    5.0,
		StorePath:    "sproutsync-store.json",
		ListenAddr:   "127.0.0.1:8089",
		MaxPages:     0,
	}
}

// Load loads configuration from environment variables, config file, and applies defaults.
// Priority: env vars > config file > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Config file is optional
	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UnmarshalJSON accepts durations as strings ("45s") or integer nanoseconds.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	aux := struct {
		*plain
		Timeout json.RawMessage `json:"timeout"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(aux.Timeout) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(aux.Timeout, &s); err == nil {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		c.Timeout = d
		return nil
	}
	var n int64
	if err := json.Unmarshal(aux.Timeout, &n); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	c.Timeout = time.Duration(n)
	return nil
}

// loadFromFile attempts to load config from sproutsync.json in current directory or home directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"sproutsync.json",
		filepath.Join(os.Getenv("HOME"), ".config", "sproutsync", "sproutsync.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("SPROUTSYNC_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("SPROUTSYNC_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("SPROUTSYNC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := os.Getenv("SPROUTSYNC_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("SPROUTSYNC_CACHE_ENABLED"); v != "" {
		c.CacheEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SPROUTSYNC_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = f
		}
	}
	if v := os.Getenv("SPROUTSYNC_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("SPROUTSYNC_MYSQL_DSN"); v != "" {
		c.MySQLDSN = v
	}
	if v := os.Getenv("SPROUTSYNC_LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("SPROUTSYNC_MAX_PAGES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxPages = n
		}
	}
}

// Validate checks that configuration values are valid and consistent.
// The API key is not required here; see RequireAPIKey.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative")
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("max_pages must be non-negative")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL")
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("base_url must end with /")
	}
	if c.MySQLDSN == "" && c.StorePath == "" {
		return fmt.Errorf("store_path must be set when mysql_dsn is empty")
	}
	return nil
}

// RequireAPIKey returns ErrMissingAPIKey if no API key is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// APIHost returns the host name of BaseURL, used for the fetcher's domain allowlist.
func (c *Config) APIHost() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
