package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Rescan   RescanConfig   `yaml:"rescan"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds database connection settings. An empty URL selects
// in-memory storage.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// GeminiConfig holds model settings. The API key is taken from the
// GEMINI_API_KEY environment variable when unset here.
type GeminiConfig struct {
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`              // default: gemini-2.5-flash
	RequestsPerMinute int    `yaml:"requests_per_minute"` // 0 disables pacing
}

// PipelineConfig holds verification run settings.
type PipelineConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`  // retry attempts for rate-limited stages
	InitialDelay time.Duration `yaml:"initial_delay"` // first backoff delay
	MaxDelay     time.Duration `yaml:"max_delay"`     // backoff cap
	FrameCount   int           `yaml:"frame_count"`   // stills sampled per video
}

// RescanConfig holds the flagged-domain re-verification schedule.
type RescanConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron expression (default: daily at 03:00)
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{},
		Gemini: GeminiConfig{
			Model:             "gemini-2.5-flash",
			RequestsPerMinute: 0,
		},
		Pipeline: PipelineConfig{
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     30 * time.Second,
			FrameCount:   5,
		},
		Rescan: RescanConfig{
			Enabled:  false,
			Schedule: "0 3 * * *",
		},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// The environment always wins for the API key so the file can stay
	// free of secrets.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}

	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory.
// If the file does not exist, it returns sensible defaults.
// Any other error (e.g. permission denied, malformed YAML) is returned.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg = defaults()
			if key := os.Getenv("GEMINI_API_KEY"); key != "" {
				cfg.Gemini.APIKey = key
			}
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}
