package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserPath returns the config file location in the user's config
// directory.
func UserPath() string {
	return filepath.Join(ConfigDir(), FileName)
}

// Save writes the config to UserPath.
func (c *Config) Save() error {
	return c.SaveTo(UserPath())
}

// SaveTo writes the config to a specific path, creating parent
// directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
