// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Transport names accepted in controller entries.
const (
	TransportEtherCAT = "ethercat"
	TransportToolWeb  = "toolweb"
)

type Config struct {
	Controllers []ControllerConfig `yaml:"controllers"`
}

// ---- CONTROLLER ----

type ControllerConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport"`

	// EtherCAT transport.
	Interface string `yaml:"interface"`
	Position  uint16 `yaml:"position"`

	// ToolWeb transport.
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
}

// Load reads and decodes a controller inventory file. The result is not
// validated; callers run Normalize and Validate before using it.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	return &cfg, nil
}

// Lookup returns the controller entry with the given name.
// It MUST be called only after Validate().
func (c *Config) Lookup(name string) (ControllerConfig, error) {
	for _, ctrl := range c.Controllers {
		if ctrl.Name == name {
			return ctrl, nil
		}
	}
	return ControllerConfig{}, fmt.Errorf("no controller named %q in config", name)
}
