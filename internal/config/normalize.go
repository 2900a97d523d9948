// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-decode normalization.
// It is allowed to mutate configuration.
// It MUST be called before Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	for i := range cfg.Controllers {
		c := &cfg.Controllers[i]

		// Transport names are matched case-insensitively.
		c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
		c.Name = strings.TrimSpace(c.Name)
		c.Interface = strings.TrimSpace(c.Interface)
		c.Address = strings.TrimSpace(c.Address)

		// EtherCAT is the common case on the tool floor.
		if c.Transport == "" {
			c.Transport = TransportEtherCAT
		}
	}
}
