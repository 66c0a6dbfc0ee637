package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/quocvuong92/leafify/internal/constants"
)

// Environment variable names
const (
	// Remote service settings
	EnvEndpoint      = "LEAFIFY_ENDPOINT"
	EnvAPIToken      = "LEAFIFY_API_TOKEN"
	EnvSessionCookie = "LEAFIFY_SESSION_COOKIE"

	// Storage settings
	EnvStore     = "LEAFIFY_STORE"
	EnvStorePath = "LEAFIFY_STORE_PATH"

	// Logging settings
	EnvLogLevel  = "LEAFIFY_LOG_LEVEL"
	EnvLogFormat = "LEAFIFY_LOG_FORMAT"
)

// Defaults - re-exported from constants for convenience
const (
	DefaultEndpoint  = constants.DefaultEndpoint
	DefaultStoreKind = constants.DefaultStoreKind
	DefaultLogLevel  = constants.DefaultLogLevel
	DefaultLogFormat = constants.DefaultLogFormat
)

// Timeout constants - re-exported from constants for convenience
const (
	DefaultAPITimeout  = constants.DefaultAPITimeout
	DefaultChatTimeout = constants.DefaultChatTimeout
)

// Storage backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// Errors
var (
	ErrInvalidEndpoint  = errors.New("invalid endpoint. Set LEAFIFY_ENDPOINT to an http(s) URL")
	ErrInvalidStoreKind = errors.New("invalid store. Use 'file', 'sqlite', or 'memory'")
	ErrInvalidLogFormat = errors.New("invalid log format. Use 'text' or 'json'")
)

// Config holds the application configuration
type Config struct {
	// Remote identification service
	Endpoint      string
	APIToken      string
	SessionCookie string

	// Persistence
	StoreKind string // "file", "sqlite", or "memory"
	StorePath string // directory for the file store, database path for sqlite

	// Logging
	LogLevel  string
	LogFormat string

	// Flags
	Render                  bool
	Debug                   bool
	Interactive             bool
	AllowConcurrentIdentify bool
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{}
}

// Validate validates the configuration and loads from environment
func (c *Config) Validate() error {
	// Load from config file first (lowest priority)
	if fileConfig, err := LoadConfigFile(); err == nil {
		c.ApplyFileConfig(fileConfig)
	}
	// Errors loading config file are silently ignored - env vars and flags take precedence

	if v := os.Getenv(EnvEndpoint); v != "" && c.Endpoint == "" {
		c.Endpoint = v
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	c.Endpoint = strings.TrimSuffix(strings.TrimSpace(c.Endpoint), "/")
	if u, err := url.Parse(c.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidEndpoint
	}

	if c.APIToken == "" {
		c.APIToken = strings.TrimSpace(os.Getenv(EnvAPIToken))
	}
	if c.SessionCookie == "" {
		c.SessionCookie = strings.TrimSpace(os.Getenv(EnvSessionCookie))
	}

	if c.StoreKind == "" {
		c.StoreKind = os.Getenv(EnvStore)
	}
	if c.StoreKind == "" {
		c.StoreKind = DefaultStoreKind
	}
	c.StoreKind = strings.ToLower(strings.TrimSpace(c.StoreKind))
	if c.StoreKind != StoreFile && c.StoreKind != StoreSQLite && c.StoreKind != StoreMemory {
		return ErrInvalidStoreKind
	}

	if c.StorePath == "" {
		c.StorePath = os.Getenv(EnvStorePath)
	}
	if c.StorePath == "" && c.StoreKind != StoreMemory {
		path, err := DefaultStorePath(c.StoreKind)
		if err != nil {
			return err
		}
		c.StorePath = path
	}

	if c.LogLevel == "" {
		c.LogLevel = os.Getenv(EnvLogLevel)
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Debug {
		c.LogLevel = "debug"
	}

	if c.LogFormat == "" {
		c.LogFormat = os.Getenv(EnvLogFormat)
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	c.LogFormat = strings.ToLower(c.LogFormat)
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// DefaultStorePath returns the data location for the given store kind.
// It follows XDG_DATA_HOME, falling back to ~/.local/share.
func DefaultStorePath(kind string) (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(dataHome, constants.AppName)
	if kind == StoreSQLite {
		return filepath.Join(dir, "leafify.db"), nil
	}
	return dir, nil
}

// IdentifyURL returns the full URL of the identification endpoint
func (c *Config) IdentifyURL() string {
	return c.Endpoint + "/identify"
}

// ChatURL returns the full URL of the follow-up chat endpoint
func (c *Config) ChatURL() string {
	return c.Endpoint + "/chat"
}
