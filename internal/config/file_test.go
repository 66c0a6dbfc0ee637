package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTempConfigFile creates a temporary config file for testing
func createTempConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	configDir := filepath.Join(dir, ".leafify")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	return configPath
}

// =============================================================================
// loadConfigFromPath Tests
// =============================================================================

func TestLoadConfigFromPath_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
endpoint: https://plants.example.com

auth:
  token: secret
  session_cookie: "session=abc"

storage:
  kind: sqlite
  path: /var/lib/leafify/leafify.db

logging:
  level: debug
  format: json

defaults:
  render: true
  allow_concurrent_identify: true
`
	configPath := createTempConfigFile(t, tmpDir, configContent)

	cfg, err := loadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("loadConfigFromPath() error = %v", err)
	}

	if cfg.Endpoint != "https://plants.example.com" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Auth == nil || cfg.Auth.Token != "secret" || cfg.Auth.SessionCookie != "session=abc" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Storage == nil {
		t.Fatal("Storage config should not be nil")
	}
	if cfg.Storage.Kind != "sqlite" {
		t.Errorf("Storage.Kind = %q, want %q", cfg.Storage.Kind, "sqlite")
	}
	if cfg.Logging == nil || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Defaults == nil {
		t.Fatal("Defaults config should not be nil")
	}
	if !cfg.Defaults.Render {
		t.Error("Defaults.Render should be true")
	}
	if !cfg.Defaults.AllowConcurrentIdentify {
		t.Error("Defaults.AllowConcurrentIdentify should be true")
	}
}

func TestLoadConfigFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	invalidContent := `
endpoint: [invalid yaml
  - this is broken
`
	configPath := createTempConfigFile(t, tmpDir, invalidContent)

	_, err := loadConfigFromPath(configPath)
	if err == nil {
		t.Error("loadConfigFromPath() should return error for invalid YAML")
	}
}

func TestLoadConfigFromPath_NotFound(t *testing.T) {
	_, err := loadConfigFromPath("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("loadConfigFromPath() should return error for non-existent file")
	}
}

// =============================================================================
// ApplyFileConfig Tests
// =============================================================================

func TestApplyFileConfig_Nil(t *testing.T) {
	cfg := NewConfig()
	cfg.ApplyFileConfig(nil)
	if cfg.Endpoint != "" {
		t.Errorf("Endpoint = %q, want empty", cfg.Endpoint)
	}
}

func TestApplyFileConfig_FillsEmptyFields(t *testing.T) {
	clearAllEnvVars(t)

	cfg := NewConfig()
	cfg.ApplyFileConfig(&FileConfig{
		Endpoint: "https://file.example.com",
		Auth:     &AuthConfig{Token: "file-token"},
		Storage:  &StorageConfig{Kind: "memory"},
		Logging:  &LoggingConfig{Level: "warn"},
		Defaults: &DefaultsConfig{Render: true},
	})

	if cfg.Endpoint != "https://file.example.com" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.APIToken != "file-token" {
		t.Errorf("APIToken = %q", cfg.APIToken)
	}
	if cfg.StoreKind != "memory" {
		t.Errorf("StoreKind = %q", cfg.StoreKind)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if !cfg.Render {
		t.Error("Render should be enabled by file defaults")
	}
}

func TestApplyFileConfig_DoesNotOverrideFlags(t *testing.T) {
	clearAllEnvVars(t)

	cfg := NewConfig()
	cfg.Endpoint = "https://flag.example.com"
	cfg.StoreKind = "file"
	cfg.ApplyFileConfig(&FileConfig{
		Endpoint: "https://file.example.com",
		Storage:  &StorageConfig{Kind: "sqlite"},
	})

	if cfg.Endpoint != "https://flag.example.com" {
		t.Errorf("Endpoint = %q, want flag value", cfg.Endpoint)
	}
	if cfg.StoreKind != "file" {
		t.Errorf("StoreKind = %q, want flag value", cfg.StoreKind)
	}
}

func TestApplyFileConfig_EnvWinsOverFile(t *testing.T) {
	clearAllEnvVars(t)
	setEnvForTest(t, EnvEndpoint, "https://env.example.com")

	cfg := NewConfig()
	cfg.ApplyFileConfig(&FileConfig{Endpoint: "https://file.example.com"})

	if cfg.Endpoint != "" {
		t.Errorf("Endpoint = %q, want empty so env applies in Validate", cfg.Endpoint)
	}
}

func TestValidate_LoadsProjectConfigFile(t *testing.T) {
	clearAllEnvVars(t)
	tmpDir := runInTempDir(t)
	createTempConfigFile(t, tmpDir, "endpoint: https://project.example.com\n")

	cfg := NewConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.Endpoint != "https://project.example.com" {
		t.Errorf("Endpoint = %q, want project file value", cfg.Endpoint)
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	tmpDir := runInTempDir(t)

	path, err := CreateDefaultConfigFile()
	if err != nil {
		t.Fatalf("CreateDefaultConfigFile() error = %v", err)
	}
	if !strings.HasPrefix(path, tmpDir) {
		t.Errorf("path = %q, want under %q", path, tmpDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read created file: %v", err)
	}
	for _, want := range []string{"endpoint:", "session_cookie:", "/session-login", EnvSessionCookie} {
		if !strings.Contains(string(data), want) {
			t.Errorf("default config should mention %q", want)
		}
	}

	// The generated file must parse
	if _, err := loadConfigFromPath(path); err != nil {
		t.Errorf("default config does not parse: %v", err)
	}

	if _, err := CreateDefaultConfigFile(); err == nil {
		t.Error("second CreateDefaultConfigFile() should fail when file exists")
	}
}
