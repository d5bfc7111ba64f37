// Package config provides configuration loading and management for
// slidetiler. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Tile parameters
	Tile struct {
		// Stride is the non-overlapping tile edge length in pixels.
		// With the fixed 1-pixel overlap, interior tiles are
		// (stride+2) pixels on a side
		Stride int64 `yaml:"stride"`

		// Format is the transport image format for tiles: "jpeg" or "png"
		Format string `yaml:"format"`

		// Quality is the JPEG encoding quality (1-100), ignored for PNG
		Quality int `yaml:"quality"`
	} `yaml:"tile"`

	// Server parameters
	Server struct {
		// Addr is the listen address, e.g. ":8080"
		Addr string `yaml:"addr"`

		// SlideDir is the directory slide files are served from
		SlideDir string `yaml:"slideDir"`

		// CORSOrigins lists the origins allowed to fetch tiles;
		// empty allows any origin, which is what browser-based
		// viewers on another host need
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`

	// Log parameters
	Log struct {
		// File is the log file path; empty logs to stdout
		File string `yaml:"file"`

		// MaxSize is the size in megabytes at which the log rotates
		MaxSize int `yaml:"maxSize"`

		// MaxAge is the number of days rotated logs are kept
		MaxAge int `yaml:"maxAge"`
	} `yaml:"log"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default tile parameters
	cfg.Tile.Stride = 510
	cfg.Tile.Format = "jpeg"
	cfg.Tile.Quality = 80

	// Set default server parameters
	cfg.Server.Addr = ":8080"
	cfg.Server.SlideDir = "."

	// Set default log parameters
	cfg.Log.MaxSize = 100
	cfg.Log.MaxAge = 30

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

func (cfg *Config) validate() error {
	if cfg.Tile.Stride < 1 {
		return fmt.Errorf("tile stride must be positive, got %d", cfg.Tile.Stride)
	}
	switch cfg.Tile.Format {
	case "jpeg", "png":
	default:
		return fmt.Errorf("unsupported tile format %q (must be jpeg or png)", cfg.Tile.Format)
	}
	if cfg.Tile.Quality < 1 || cfg.Tile.Quality > 100 {
		return fmt.Errorf("tile quality must be in 1..100, got %d", cfg.Tile.Quality)
	}
	return nil
}
