// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if len(cfg.Controllers) == 0 {
		return fmt.Errorf("config declares no controllers")
	}

	names := make(map[string]struct{}, len(cfg.Controllers))

	for _, c := range cfg.Controllers {
		if c.Name == "" {
			return fmt.Errorf("controller with empty name")
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("controller %q declared more than once", c.Name)
		}
		names[c.Name] = struct{}{}

		switch c.Transport {
		case TransportEtherCAT:
			if c.Interface == "" {
				return fmt.Errorf(
					"controller %q: ethercat transport requires an interface",
					c.Name,
				)
			}
			if c.Address != "" {
				return fmt.Errorf(
					"controller %q: address is a toolweb setting",
					c.Name,
				)
			}

		case TransportToolWeb:
			if c.Address == "" {
				return fmt.Errorf(
					"controller %q: toolweb transport requires an address",
					c.Name,
				)
			}
			if c.Interface != "" || c.Position != 0 {
				return fmt.Errorf(
					"controller %q: interface and position are ethercat settings",
					c.Name,
				)
			}

		default:
			return fmt.Errorf(
				"controller %q: unknown transport %q",
				c.Name,
				c.Transport,
			)
		}
	}

	return nil
}
