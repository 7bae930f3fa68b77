// Package config holds the collection configuration consumed by the insert
// views. Configuration is loaded once and treated as read-only afterwards.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProxyConfig describes proxy-mode replay for a single collection.
type ProxyConfig struct {
	// Coll names the collection served through the proxy.
	Coll string `yaml:"coll"`
	// UseWombat enables the client-side rewriting helper.
	UseWombat bool `yaml:"use_wombat"`
	// UsePreserveWorker enables the background preservation worker.
	UsePreserveWorker bool `yaml:"use_preserve_worker"`
}

// Config is the subset of the application configuration the template views
// read. Unknown keys are ignored so the same file can carry the rest of the
// application's settings.
type Config struct {
	Proxy *ProxyConfig `yaml:"proxy"`

	// FramedReplay selects iframe-based replay as the collection default.
	FramedReplay bool `yaml:"framed_replay"`
}

// Parse decodes a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// Load reads and decodes a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}
