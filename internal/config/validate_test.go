// internal/config/validate_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// helper to build a controller entry quickly
func ctrl(name, transport, iface string, position uint16, address string) ControllerConfig {
	return ControllerConfig{
		Name:      name,
		Transport: transport,
		Interface: iface,
		Position:  position,
		Address:   address,
	}
}

// ---- tests ----

func TestValidate_MixedTransports(t *testing.T) {
	cfg := &Config{
		Controllers: []ControllerConfig{
			ctrl("mfc1", "ethercat", "eth1", 3, ""),
			ctrl("mfc2", "toolweb", "", 0, "192.168.2.155"),
		},
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EmptyInventoryRejected(t *testing.T) {
	if err := Validate(&Config{}); err == nil {
		t.Fatalf("expected error for empty inventory, got nil")
	}
}

func TestValidate_DuplicateNameRejected(t *testing.T) {
	cfg := &Config{
		Controllers: []ControllerConfig{
			ctrl("mfc1", "ethercat", "eth1", 3, ""),
			ctrl("mfc1", "ethercat", "eth2", 4, ""),
		},
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected duplicate-name error, got nil")
	}
}

func TestValidate_EthercatRequiresInterface(t *testing.T) {
	cfg := &Config{
		Controllers: []ControllerConfig{
			ctrl("mfc1", "ethercat", "", 3, ""),
		},
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected missing-interface error, got nil")
	}
}

func TestValidate_ToolwebRequiresAddress(t *testing.T) {
	cfg := &Config{
		Controllers: []ControllerConfig{
			ctrl("mfc1", "toolweb", "", 0, ""),
		},
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected missing-address error, got nil")
	}
}

func TestValidate_CrossTransportSettingsRejected(t *testing.T) {
	cfg := &Config{
		Controllers: []ControllerConfig{
			ctrl("mfc1", "toolweb", "eth1", 0, "192.168.2.155"),
		},
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected cross-transport error, got nil")
	}
}

func TestValidate_UnknownTransportRejected(t *testing.T) {
	cfg := &Config{
		Controllers: []ControllerConfig{
			ctrl("mfc1", "serial", "", 0, ""),
		},
	}

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected unknown-transport error, got nil")
	}
}

func TestNormalize_DefaultsAndTrimming(t *testing.T) {
	cfg := &Config{
		Controllers: []ControllerConfig{
			ctrl(" mfc1 ", "", " eth1 ", 3, ""),
			ctrl("mfc2", "ToolWeb", "", 0, " 192.168.2.155 "),
		},
	}

	Normalize(cfg)

	if got := cfg.Controllers[0].Transport; got != TransportEtherCAT {
		t.Fatalf("default transport = %q, want %q", got, TransportEtherCAT)
	}
	if got := cfg.Controllers[0].Name; got != "mfc1" {
		t.Fatalf("name = %q, want %q", got, "mfc1")
	}
	if got := cfg.Controllers[1].Transport; got != TransportToolWeb {
		t.Fatalf("transport = %q, want %q", got, TransportToolWeb)
	}
	if got := cfg.Controllers[1].Address; got != "192.168.2.155" {
		t.Fatalf("address = %q, want %q", got, "192.168.2.155")
	}
}

func TestLoadLookupRoundTrip(t *testing.T) {
	yaml := `
controllers:
  - name: chamber-a
    transport: ethercat
    interface: eth1
    position: 3
  - name: chamber-b
    transport: toolweb
    address: 192.168.2.155
`

	path := filepath.Join(t.TempDir(), "controllers.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	Normalize(cfg)
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	c, err := cfg.Lookup("chamber-a")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if c.Interface != "eth1" || c.Position != 3 {
		t.Fatalf("unexpected controller: %+v", c)
	}

	if _, err := cfg.Lookup("chamber-z"); err == nil {
		t.Fatalf("expected lookup error for unknown name, got nil")
	}
}
