// Package config handles meshweld configuration loading and management.
package config

import (
	"fmt"
	"time"
)

// Config holds all settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Texture TextureConfig `yaml:"texture"`
	Export  ExportConfig  `yaml:"export"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds model loading settings.
type MeshConfig struct {
	// DefaultColor is the 0-255 tint written into every welded vertex.
	DefaultColor [3]uint8 `yaml:"default_color"`
	// Strict reports missing model, material and texture files as errors
	// instead of degrading to empty or untextured results.
	Strict bool `yaml:"strict"`
}

// TextureConfig holds diffuse texture settings.
type TextureConfig struct {
	// FlipVertical reorders texture rows bottom-first after decoding.
	FlipVertical bool `yaml:"flip_vertical"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Generator    string `yaml:"generator"`
	EmbedTexture bool   `yaml:"embed_texture"`
}

// WatchConfig holds file watching settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			DefaultColor: [3]uint8{150, 190, 210},
			Strict:       false,
		},
		Texture: TextureConfig{
			FlipVertical: true,
		},
		Export: ExportConfig{
			Generator:    "meshweld",
			EmbedTexture: true,
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values a YAML file or flag could have broken.
func (c *Config) Validate() error {
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}
