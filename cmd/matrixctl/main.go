// Command matrixctl is an interactive controller for Framework input modules.
//
// It discovers attached LED matrix and keyboard backlight modules over USB
// HID, opens a retrying session to one of them, and exposes the display
// operations as interactive commands:
//   - Discovery and session management
//   - Brightness, built-in patterns, percentage bar
//   - Sleep/wake and animation control
//   - Full-frame and 1-bit drawing
//   - Firmware status queries
//
// Usage:
//
//	matrixctl [flags]
//
// Flags:
//
//	-config string       Configuration file path (YAML)
//	-protocol-log string Write protocol events to this file (CBOR log)
//	-simulate            Use simulated devices instead of USB HID
//	-log-level string    Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Control a real module, recording the protocol exchange
//	matrixctl -protocol-log session.cborlog
//
//	# Exercise the command set without hardware
//	matrixctl -simulate
//
//	# Custom retry policy and device table
//	matrixctl -config /etc/inputmodule/matrixctl.yaml
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/inputmodule/inputmodule-go/cmd/matrixctl/interactive"
	"github.com/inputmodule/inputmodule-go/internal/simulated"
	"github.com/inputmodule/inputmodule-go/pkg/config"
	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/log"
	"github.com/inputmodule/inputmodule-go/pkg/session"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// Config holds the controller configuration.
type Config struct {
	ConfigFile  string
	ProtocolLog string
	Simulate    bool
	LogLevel    string
}

var cfg Config

func init() {
	flag.StringVar(&cfg.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&cfg.ProtocolLog, "protocol-log", "", "Write protocol events to this file (CBOR log)")
	flag.BoolVar(&cfg.Simulate, "simulate", false, "Use simulated devices instead of USB HID")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	setupLogging(cfg.LogLevel)

	// Resolve policy and signature table, optionally from a config file.
	policy := session.DefaultPolicy()
	table := descriptor.DefaultTable()
	if cfg.ConfigFile != "" {
		fileCfg, err := config.Load(cfg.ConfigFile)
		if err != nil {
			stdlog.Fatalf("Failed to load config: %v", err)
		}
		policy = fileCfg.Policy()
		table, err = fileCfg.Table()
		if err != nil {
			stdlog.Fatalf("Invalid device table: %v", err)
		}
	}

	// Protocol logger: file sink when requested, otherwise discard.
	var logger log.Logger = log.NoopLogger{}
	if cfg.ProtocolLog != "" {
		fileLogger, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			stdlog.Fatalf("Failed to open protocol log: %v", err)
		}
		defer fileLogger.Close()
		logger = fileLogger
		stdlog.Printf("Protocol log: %s", cfg.ProtocolLog)
	}

	registry := buildRegistry()

	ctrl, err := interactive.New(registry, table, policy, logger)
	if err != nil {
		stdlog.Fatalf("Failed to start interactive mode: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shutdown on SIGINT/SIGTERM as well as on quit/EOF from the loop.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			stdlog.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	ctrl.Run(ctx, cancel)
}

// buildRegistry returns the USB HID registry, or a simulated bus with one
// module of each kind when -simulate is set.
func buildRegistry() transport.Registry {
	if !cfg.Simulate {
		return transport.NewSystemRegistry()
	}

	stdlog.Println("Simulation mode: using in-memory devices")
	return simulated.NewBus(
		simulated.NewDevice("sim/led-matrix-0", descriptor.KindLedMatrix),
		simulated.NewDevice("sim/backlight-0", descriptor.KindKeyboardBacklight),
	)
}

func setupLogging(level string) {
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	switch level {
	case "debug":
		stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds | stdlog.Lshortfile)
	case "warn", "error":
		stdlog.SetFlags(stdlog.Ltime)
	}
}
