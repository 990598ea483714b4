package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// DefaultsConfig holds default analysis parameters
type DefaultsConfig struct {
	Model       string `yaml:"model"`
	Timeout     string `yaml:"timeout"`
	MaxRetries  int    `yaml:"max_retries"`
	Concurrency int    `yaml:"concurrency"`
}

// LimitsConfig holds input size limits
type LimitsConfig struct {
	MaxTranscriptChars int   `yaml:"max_transcript_chars"`
	MaxUploadBytes     int64 `yaml:"max_upload_bytes"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "60s",
			MaxRetries:  3,
			Concurrency: 4,
		},
		Limits: LimitsConfig{
			MaxTranscriptChars: 30000,
			MaxUploadBytes:     10 * 1024 * 1024,
		},
	}
}

// AppDir returns the application directory (~/.call2insights)
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".call2insights"
	}
	return filepath.Join(home, ".call2insights")
}

// LogsDir returns the log directory
func LogsDir() string {
	return filepath.Join(AppDir(), "logs")
}

// ConfigPath returns the config file path
func ConfigPath() string {
	return filepath.Join(AppDir(), "config.yaml")
}

// EnsureDirs creates all required directories
func EnsureDirs() error {
	dirs := []string{AppDir(), LogsDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Load reads config from file, returns default if not exists
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// LoadDefault loads config from default path
func LoadDefault() (*Config, error) {
	return Load(ConfigPath())
}

// Save writes config to file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveDefault saves config to default path
func (c *Config) SaveDefault() error {
	return c.Save(ConfigPath())
}

// GetTimeout returns the per-request timeout as a duration
func (c *Config) GetTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Defaults.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Defaults.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", c.Defaults.Timeout)
	}
	return d, nil
}

// APIKey returns the AI service credential from the environment.
// GEMINI_API_KEY takes precedence over GOOGLE_API_KEY.
func APIKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// Environment returns the optional deployment-environment tag.
func Environment() string {
	return os.Getenv("CALL2INSIGHTS_ENV")
}
