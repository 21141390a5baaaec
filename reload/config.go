package reload

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the optional project configuration file name.
const ConfigFile = "craft.yaml"

// DefaultDebounce is how long the watcher waits after the last event in
// a burst before triggering.
const DefaultDebounce = 300 * time.Millisecond

// Config represents the optional craft.yaml configuration.
type Config struct {
	Roots    []string      `yaml:"roots,omitempty"`
	Ignore   []string      `yaml:"ignore,omitempty"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Addr     string        `yaml:"addr,omitempty"`
}

// LoadOptional reads craft.yaml from dir if present. A missing file
// yields the zero config, not an error.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}
	return &cfg, nil
}

// Resolve fills zero fields with defaults relative to dir.
func (c *Config) Resolve(dir string) {
	if len(c.Roots) == 0 {
		c.Roots = []string{dir}
	}
	for i, root := range c.Roots {
		if !filepath.IsAbs(root) {
			c.Roots[i] = filepath.Join(dir, root)
		}
	}
	if len(c.Ignore) == 0 {
		c.Ignore = []string{".git", "node_modules", ".DS_Store"}
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.Addr == "" {
		c.Addr = "127.0.0.1:35729"
	}
}
