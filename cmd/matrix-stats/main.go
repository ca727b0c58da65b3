// Command matrix-stats renders per-core CPU load as bar meters on an
// LED matrix input module.
//
// Each matrix column shows one CPU core as a vertical bar growing from
// the bottom of the grid. Hosts with more cores than columns fold
// adjacent cores into one bar. The render loop tolerates transient
// device failures: a frame that exhausts its retries is dropped, and a
// failed session is reopened on the next tick.
//
// Usage:
//
//	matrix-stats [flags]
//
// Flags:
//
//	-config string       Configuration file path (YAML)
//	-protocol-log string Write protocol events to this file (CBOR log)
//	-device string       HID path of the matrix to use (default: first found)
//	-interval duration   Refresh interval (default 1s)
//	-brightness int      Display brightness 0-255 (default 255)
//	-simulate            Use a simulated device instead of USB HID
//
// Examples:
//
//	# Show CPU load on the first attached matrix, refreshed every second
//	matrix-stats
//
//	# Target a specific module and record the protocol exchange
//	matrix-stats -device /dev/hidraw3 -protocol-log stats.cborlog
package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/inputmodule/inputmodule-go/internal/simulated"
	"github.com/inputmodule/inputmodule-go/pkg/codec"
	"github.com/inputmodule/inputmodule-go/pkg/config"
	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
	"github.com/inputmodule/inputmodule-go/pkg/log"
	"github.com/inputmodule/inputmodule-go/pkg/session"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// barIntensity is the greyscale level of the meter bars; bgIntensity is
// the idle backdrop so an all-idle host still shows a lit grid outline.
const (
	barIntensity = 0xB0
	bgIntensity  = 0x02
)

// Config holds the meter configuration.
type Config struct {
	ConfigFile  string
	ProtocolLog string
	DevicePath  string
	Interval    time.Duration
	Brightness  int
	Simulate    bool
}

var cfg Config

func init() {
	flag.StringVar(&cfg.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&cfg.ProtocolLog, "protocol-log", "", "Write protocol events to this file (CBOR log)")
	flag.StringVar(&cfg.DevicePath, "device", "", "HID path of the matrix to use (default: first found)")
	flag.DurationVar(&cfg.Interval, "interval", time.Second, "Refresh interval")
	flag.IntVar(&cfg.Brightness, "brightness", 255, "Display brightness 0-255")
	flag.BoolVar(&cfg.Simulate, "simulate", false, "Use a simulated device instead of USB HID")
}

func main() {
	flag.Parse()
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

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

	var logger log.Logger = log.NoopLogger{}
	if cfg.ProtocolLog != "" {
		fileLogger, err := log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			stdlog.Fatalf("Failed to open protocol log: %v", err)
		}
		defer fileLogger.Close()
		logger = fileLogger
	}

	var registry transport.Registry = transport.NewSystemRegistry()
	if cfg.Simulate {
		stdlog.Println("Simulation mode: using an in-memory device")
		registry = simulated.NewBus(simulated.NewDevice("sim/led-matrix-0", descriptor.KindLedMatrix))
	}

	desc, err := selectMatrix(registry, table)
	if err != nil {
		stdlog.Fatalf("%v", err)
	}
	stdlog.Printf("Using %s at %s", desc.Kind, desc.Path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		stdlog.Printf("Received signal: %v", sig)
		cancel()
	}()

	meter := &meter{
		registry: registry,
		desc:     desc,
		policy:   policy,
		logger:   logger,
	}
	if err := meter.run(ctx); err != nil {
		stdlog.Fatalf("%v", err)
	}
	stdlog.Println("Goodbye!")
}

// selectMatrix discovers attached modules and picks the configured one,
// or the first LED matrix when no -device flag was given.
func selectMatrix(registry transport.Registry, table descriptor.Table) (descriptor.Descriptor, error) {
	devices := descriptor.DiscoverTable(registry, table)

	if cfg.DevicePath != "" {
		for _, d := range devices {
			if d.Path == cfg.DevicePath {
				return d, nil
			}
		}
		return descriptor.Descriptor{}, errors.New("no input module at " + cfg.DevicePath)
	}

	for _, d := range devices {
		if d.Kind == descriptor.KindLedMatrix {
			return d, nil
		}
	}
	return descriptor.Descriptor{}, errors.New("no LED matrix module found")
}

// meter owns the session and redraws the display on every tick.
type meter struct {
	registry transport.Registry
	desc     descriptor.Descriptor
	policy   session.Policy
	logger   log.Logger

	sess *session.Session
}

func (m *meter) run(ctx context.Context) error {
	if err := m.connect(); err != nil {
		return err
	}
	defer m.close()

	// Prime the sampler; the first reading compares against process start
	// and is not meaningful.
	_, _ = cpu.Percent(0, true)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.tick()
		}
	}
}

// tick samples CPU load and pushes one frame, reconnecting a failed
// session and dropping frames on exhausted retries.
func (m *meter) tick() {
	if m.sess == nil {
		if err := m.connect(); err != nil {
			stdlog.Printf("Reconnect failed: %v", err)
			return
		}
		stdlog.Println("Reconnected")
	}

	values, err := cpu.Percent(0, true)
	if err != nil {
		stdlog.Printf("CPU sampling failed: %v", err)
		return
	}

	f := renderMeter(values)
	switch err := m.sess.Draw(f); {
	case err == nil:

	case errors.Is(err, session.ErrRetriesExhausted):
		// Transient: drop this frame, the next tick retries.
		stdlog.Printf("Frame dropped: %v", err)

	case errors.Is(err, session.ErrSessionFailed), errors.Is(err, session.ErrSessionClosed):
		stdlog.Printf("Session lost: %v", err)
		m.close()

	default:
		stdlog.Printf("Draw failed: %v", err)
	}
}

func (m *meter) connect() error {
	sess, err := session.Open(m.registry, m.desc, m.policy, session.WithLogger(m.logger))
	if err != nil {
		return err
	}
	if err := sess.SetBrightness(cfg.Brightness); err != nil {
		_ = sess.Close()
		return err
	}
	m.sess = sess
	return nil
}

func (m *meter) close() {
	if m.sess == nil {
		return
	}
	_ = m.sess.Close()
	m.sess = nil
}

// renderMeter draws per-core load as vertical bars, one column per core.
// Hosts with more cores than columns fold adjacent cores into one bar by
// averaging them.
func renderMeter(values []float64) *frame.Frame {
	f := frame.MustNew(codec.MatrixWidth, codec.MatrixHeight)
	f.Fill(bgIntensity)

	bars := foldCores(values, codec.MatrixWidth)
	for x, load := range bars {
		barHeight := int(load * float64(codec.MatrixHeight) / 100.0)
		if barHeight > codec.MatrixHeight {
			barHeight = codec.MatrixHeight
		}
		// Bars grow from the bottom row upward.
		for y := codec.MatrixHeight - barHeight; y < codec.MatrixHeight; y++ {
			_ = f.Set(x, y, barIntensity)
		}
	}
	return f
}

// foldCores reduces len(values) cores to at most width bars.
func foldCores(values []float64, width int) []float64 {
	if len(values) <= width {
		return values
	}

	bars := make([]float64, width)
	perBar := (len(values) + width - 1) / width
	for i := range bars {
		start := i * perBar
		end := start + perBar
		if end > len(values) {
			end = len(values)
		}
		if start >= end {
			break
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		bars[i] = sum / float64(end-start)
	}
	return bars
}
