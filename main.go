// Package main provides the entry point for WG Manager, a WireGuard
// client for Linux that automatically selects between the in-kernel
// and userspace WireGuard implementations.
//
// On startup the application probes for the wireguard kernel module;
// when present and root can be obtained, tunnels are driven through
// the kernel implementation, otherwise the bundled userspace
// implementation is used. The decision is made once per process and
// published to every subsystem.
//
// Usage:
//
//	wg-manager [options]
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yllada/wg-manager/app"
	"github.com/yllada/wg-manager/cli"
	"github.com/yllada/wg-manager/common"
	"github.com/yllada/wg-manager/config"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z).
// Default values are used for local development builds.
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")

	showStatus   = flag.Bool("status", false, "Show the resolved tunnel backend")
	listTunnels  = flag.Bool("list", false, "List configured tunnels")
	createTunnel = flag.String("create", "", "Create a tunnel with the given name")
	deleteTunnel = flag.String("delete", "", "Delete the tunnel with the given name")
	genKey       = flag.Bool("genkey", false, "Generate and print a keypair")
	setDiagAuth  = flag.Bool("set-diag-auth", false, "Store diagnostics endpoint credentials")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (built %s, commit %s)\n", common.AppName, appVersion, buildTime, commitSHA)
		return
	}

	logger := common.GetLogger()
	if *verbose {
		logger.SetLevel(common.LevelDebug)
	}
	if err := logger.EnableFileLogging(); err != nil {
		common.LogWarn("File logging unavailable: %v", err)
	}
	defer common.CloseLogger()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Verbose = true
	}
	if cfg.Verbose {
		logger.SetLevel(common.LevelDebug)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := run(cli.New(a)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to the requested command, defaulting to status.
func run(c *cli.CLI) error {
	switch {
	case *listTunnels:
		return c.ListTunnels()
	case *createTunnel != "":
		return c.CreateTunnel(*createTunnel)
	case *deleteTunnel != "":
		return c.DeleteTunnel(*deleteTunnel)
	case *genKey:
		return c.GenKey()
	case *setDiagAuth:
		return c.SetDiagnosticsAuth()
	case *showStatus:
		return c.Status()
	default:
		return c.Status()
	}
}
