// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/ac3d-export/pkg/encoding"
)

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds the options the host exposes on its export dialog.
type ExportConfig struct {
	LimitToRenderLayers bool   `yaml:"limit_to_render_layers"`
	LimitToSelection    bool   `yaml:"limit_to_selection"`
	Triangulate         bool   `yaml:"triangulate"`        // Fan-triangulate meshes before export
	DoubleSidedFlags    bool   `yaml:"double_sided_flags"` // Write SURF 0X20 for double-sided meshes
	Encoding            string `yaml:"encoding"`           // Output character set
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			LimitToRenderLayers: true,
			LimitToSelection:    false,
			Triangulate:         true,
			DoubleSidedFlags:    false,
			Encoding:            encoding.UTF8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if err := encoding.Validate(c.Export.Encoding); err != nil {
		return fmt.Errorf("export.encoding: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	return nil
}
