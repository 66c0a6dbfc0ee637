package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/leafify/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// FileConfig represents the configuration file structure
type FileConfig struct {
	// Base URL of the identification service
	Endpoint string `yaml:"endpoint,omitempty"`

	Auth     *AuthConfig     `yaml:"auth,omitempty"`
	Storage  *StorageConfig  `yaml:"storage,omitempty"`
	Logging  *LoggingConfig  `yaml:"logging,omitempty"`
	Defaults *DefaultsConfig `yaml:"defaults,omitempty"`
}

// AuthConfig holds credentials sent with each request
type AuthConfig struct {
	Token         string `yaml:"token,omitempty"`
	SessionCookie string `yaml:"session_cookie,omitempty"`
}

// StorageConfig selects the history backend
type StorageConfig struct {
	Kind string `yaml:"kind,omitempty"` // "file", "sqlite", "memory"
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "text" or "json"
}

// DefaultsConfig holds default flag values
type DefaultsConfig struct {
	Render                  bool `yaml:"render,omitempty"`
	AllowConcurrentIdentify bool `yaml:"allow_concurrent_identify,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", "."+constants.AppName, ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, constants.AppName, ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", constants.AppName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from a file
func LoadConfigFile() (*FileConfig, error) {
	for _, path := range GetConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}

	// No config file found, return empty config
	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyFileConfig applies file configuration to the main Config.
// File config has lower priority than environment variables and CLI flags,
// so only empty fields are filled.
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	if c.Endpoint == "" && fc.Endpoint != "" && os.Getenv(EnvEndpoint) == "" {
		c.Endpoint = fc.Endpoint
	}

	if fc.Auth != nil {
		if c.APIToken == "" && os.Getenv(EnvAPIToken) == "" {
			c.APIToken = fc.Auth.Token
		}
		if c.SessionCookie == "" && os.Getenv(EnvSessionCookie) == "" {
			c.SessionCookie = fc.Auth.SessionCookie
		}
	}

	if fc.Storage != nil {
		if c.StoreKind == "" && os.Getenv(EnvStore) == "" {
			c.StoreKind = fc.Storage.Kind
		}
		if c.StorePath == "" && os.Getenv(EnvStorePath) == "" {
			c.StorePath = fc.Storage.Path
		}
	}

	if fc.Logging != nil {
		if c.LogLevel == "" && os.Getenv(EnvLogLevel) == "" {
			c.LogLevel = fc.Logging.Level
		}
		if c.LogFormat == "" && os.Getenv(EnvLogFormat) == "" {
			c.LogFormat = fc.Logging.Format
		}
	}

	// Booleans can only be switched on from the file, since an unset flag
	// and a flag set to false look the same.
	if fc.Defaults != nil {
		if fc.Defaults.Render {
			c.Render = true
		}
		if fc.Defaults.AllowConcurrentIdentify {
			c.AllowConcurrentIdentify = true
		}
	}
}

// CreateDefaultConfigFile creates a default config file at the user config directory
func CreateDefaultConfigFile() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, constants.AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	defaultConfig := `# Leafify Configuration
# Location: ~/.config/leafify/config.yaml

# Base URL of the identification service (POST /identify, POST /chat)
# endpoint: http://127.0.0.1:5000

# Credentials forwarded with every request.
# Leafify does not perform the service's POST /session-login exchange. For a
# deployment behind that login, sign in with a browser or curl and paste the
# returned session cookie below (or set LEAFIFY_SESSION_COOKIE).
# auth:
#   token: your-api-token
#   session_cookie: "session=..."

# Where identification history is kept
# storage:
#   kind: file      # file, sqlite, or memory
#   path: ~/.local/share/leafify

# logging:
#   level: info     # debug, info, warn, error, none
#   format: text    # text or json

# defaults:
#   render: true                      # render descriptions as markdown
#   allow_concurrent_identify: false  # allow a second identify while one is running
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
