// Command mfc reads and adjusts an MKS flow controller over its ToolWeb
// HTTP interface.
//
// Usage:
//
//	mfc [flags] <address>
//
// With no action flags the controller state is printed as JSON. --set
// writes a new setpoint, --set-gas selects a gas instance, --display
// switches the front-panel display; each action is followed by a state
// readback.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/openmfc/go-mfc/logger"
	"github.com/openmfc/go-mfc/toolweb"
)

func main() {
	var (
		set      = flag.Float64("set", -1, "setpoint to write, in sccm")
		setGas   = flag.String("set-gas", "", "gas instance to select, e.g. N2")
		display  = flag.String("display", "", "front-panel display mode: ip, flow or temperature")
		openAll  = flag.Bool("open", false, "drive the valve fully open")
		shut     = flag.Bool("close", false, "drive the valve fully closed")
		password = flag.String("password", "config", "ToolWeb configuration password")
		timeout  = flag.Duration("timeout", 10*time.Second, "overall command timeout")
	)
	flag.Parse()

	log := logger.GetLogger()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mfc [flags] <address>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	client, err := toolweb.NewClient(flag.Arg(0), toolweb.WithPassword(*password))
	if err != nil {
		log.Fatal("create client", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch {
	case *setGas != "":
		err = client.SetGas(ctx, *setGas)
	case *display != "":
		err = client.SetDisplay(ctx, *display)
	case *openAll:
		err = client.Open(ctx)
	case *shut:
		err = client.Close(ctx)
	case *set >= 0:
		err = client.Set(ctx, *set)
	}
	if err != nil {
		log.Fatal("command failed", "error", err)
	}

	state, err := client.Get(ctx)
	if err != nil {
		log.Fatal("read state", "error", err)
	}

	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		log.Fatal("encode state", "error", err)
	}
	fmt.Println(string(out))
}
