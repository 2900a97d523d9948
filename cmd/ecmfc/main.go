// Command ecmfc reads and adjusts an MKS flow controller over raw
// EtherCAT frames.
//
// Usage:
//
//	ecmfc --interface eth1 --position 3 [flags]
//	ecmfc --config controllers.yaml --name chamber-a [flags]
//
// With no action flags the current flow and setpoint are printed as
// JSON. --set writes a verified setpoint and prints the state after the
// write. Raw sockets need CAP_NET_RAW, so this normally runs as root.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/openmfc/go-mfc/ecat"
	"github.com/openmfc/go-mfc/internal/config"
	"github.com/openmfc/go-mfc/logger"
)

func main() {
	var (
		iface    = flag.String("interface", "", "network interface wired to the controller")
		position = flag.Int("position", 0, "slave position on the EtherCAT segment")
		cfgPath  = flag.String("config", "", "controller inventory file")
		name     = flag.String("name", "", "controller name in the inventory file")
		set      = flag.Float64("set", -1, "setpoint to write, in sccm")
		timeout  = flag.Duration("timeout", 10*time.Second, "overall command timeout")
	)
	flag.Parse()

	log := logger.GetLogger()

	if *cfgPath != "" {
		ctrl, err := lookupController(*cfgPath, *name)
		if err != nil {
			log.Fatal("resolve controller", "error", err)
		}
		*iface = ctrl.Interface
		*position = int(ctrl.Position)
	}

	if *iface == "" {
		fmt.Fprintln(os.Stderr, "usage: ecmfc --interface <nic> --position <n> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := ecat.NewSessionConfig(*iface,
		ecat.WithSlavePosition(*position),
		ecat.WithLogger(log),
	)
	if err != nil {
		log.Fatal("build session config", "error", err)
	}

	session, err := ecat.NewSession(cfg)
	if err != nil {
		log.Fatal("open session", "error", err)
	}
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *set >= 0 {
		if err := session.Set(ctx, *set); err != nil {
			log.Fatal("set flow", "error", err)
		}
	}

	flow, err := session.Get(ctx)
	if err != nil {
		log.Fatal("read flow", "error", err)
	}

	out, err := json.MarshalIndent(flow, "", "  ")
	if err != nil {
		log.Fatal("encode flow", "error", err)
	}
	fmt.Println(string(out))
}

func lookupController(path, name string) (config.ControllerConfig, error) {
	if name == "" {
		return config.ControllerConfig{}, fmt.Errorf("--config requires --name")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.ControllerConfig{}, err
	}

	config.Normalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return config.ControllerConfig{}, err
	}

	ctrl, err := cfg.Lookup(name)
	if err != nil {
		return config.ControllerConfig{}, err
	}
	if ctrl.Transport != config.TransportEtherCAT {
		return config.ControllerConfig{}, fmt.Errorf(
			"controller %q uses the %s transport; use the mfc command instead",
			name, ctrl.Transport,
		)
	}

	return ctrl, nil
}
