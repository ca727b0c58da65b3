// Package interactive provides the interactive command-line interface
// for controlling attached input modules.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/inputmodule/inputmodule-go/pkg/codec"
	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
	"github.com/inputmodule/inputmodule-go/pkg/log"
	"github.com/inputmodule/inputmodule-go/pkg/session"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// Controller handles interactive mode for matrixctl.
type Controller struct {
	registry transport.Registry
	table    descriptor.Table
	policy   session.Policy
	logger   log.Logger
	rl       *readline.Instance

	// Last discovery snapshot, indexed by the numbers shown in `list`.
	devices []descriptor.Descriptor

	// Currently open session, nil when none.
	sess *session.Session
}

// New creates a new interactive controller.
func New(registry transport.Registry, table descriptor.Table, policy session.Policy, logger log.Logger) (*Controller, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "matrix> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Controller{
		registry: registry,
		table:    table,
		policy:   policy,
		logger:   logger,
		rl:       rl,
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Controller) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop.
func (c *Controller) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.closeSession()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "list", "discover", "l":
			c.cmdList()

		case "open", "o":
			c.cmdOpen(args)

		case "close":
			c.cmdClose()

		case "session":
			c.cmdSession()

		case "brightness", "b":
			c.cmdBrightness(args)

		case "pattern", "p":
			c.cmdPattern(args)

		case "percent":
			c.cmdPercent(args)

		case "sleep":
			c.cmdSleep(true)

		case "wake":
			c.cmdSleep(false)

		case "animate":
			c.cmdAnimate()

		case "draw", "d":
			c.cmdDraw(args)

		case "bitmap":
			c.cmdBitmap(args)

		case "status", "s":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Controller) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Input Module Commands:
  Discovery:
    list               - Discover and list attached modules
    open <n|path>      - Open a session to a module (by list index or HID path)
    close              - Close the current session
    session            - Show current session state

  Display:
    brightness <0-255> - Set global brightness
    pattern <name>     - Show a built-in pattern (gradient, double-gradient,
                         lotus, zigzag, full, panic, lotus2)
    percent <0-100>    - Show the percentage progress bar
    sleep / wake       - Put the display to sleep or wake it
    animate            - Toggle frame scrolling

  Drawing:
    draw fill [v]      - Fill the grid with intensity v (default 255)
    draw clear         - Clear the grid
    draw box x1 y1 x2 y2 [v] - Draw a box outline
    bitmap checker|border    - Draw a 1-bit test image

  Status:
    status             - Query brightness, sleep state, and firmware version

  General:
    help               - Show this help
    quit               - Exit`)
}

// cmdList discovers attached modules and stores the snapshot for `open`.
func (c *Controller) cmdList() {
	c.devices = descriptor.DiscoverTable(c.registry, c.table)
	if len(c.devices) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No input modules found")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nAttached Modules (%d):\n", len(c.devices))
	for i, d := range c.devices {
		fmt.Fprintf(c.rl.Stdout(), "  [%d] %s\n", i, d.Kind)
		fmt.Fprintf(c.rl.Stdout(), "      Path:    %s\n", d.Path)
		fmt.Fprintf(c.rl.Stdout(), "      IDs:     %04x:%04x\n", d.VendorID, d.ProductID)
		if d.Product != "" {
			fmt.Fprintf(c.rl.Stdout(), "      Product: %s\n", d.Product)
		}
		if d.Serial != "" {
			fmt.Fprintf(c.rl.Stdout(), "      Serial:  %s\n", d.Serial)
		}
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdOpen opens a session to the selected device.
func (c *Controller) cmdOpen(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: open <n|path>")
		fmt.Fprintln(c.rl.Stdout(), "  Use 'list' to see available modules")
		return
	}

	desc, ok := c.resolveDevice(args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "No such module: %s\n", args[0])
		return
	}

	if c.sess != nil {
		fmt.Fprintf(c.rl.Stdout(), "Closing previous session %s\n", shortID(c.sess.ID()))
		c.closeSession()
	}

	sess, err := session.Open(c.registry, desc, c.policy, session.WithLogger(c.logger))
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Open failed: %v\n", err)
		return
	}
	c.sess = sess

	fmt.Fprintf(c.rl.Stdout(), "Session %s open to %s (%s)\n", shortID(sess.ID()), desc.Path, desc.Kind)
}

// resolveDevice maps a list index or HID path to a descriptor. A path
// argument triggers a fresh discovery when the snapshot is empty.
func (c *Controller) resolveDevice(arg string) (descriptor.Descriptor, bool) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 0 || n >= len(c.devices) {
			return descriptor.Descriptor{}, false
		}
		return c.devices[n], true
	}

	if len(c.devices) == 0 {
		c.devices = descriptor.DiscoverTable(c.registry, c.table)
	}
	for _, d := range c.devices {
		if d.Path == arg {
			return d, true
		}
	}
	return descriptor.Descriptor{}, false
}

func (c *Controller) cmdClose() {
	if c.sess == nil {
		fmt.Fprintln(c.rl.Stdout(), "No session open")
		return
	}
	id := shortID(c.sess.ID())
	c.closeSession()
	fmt.Fprintf(c.rl.Stdout(), "Session %s closed\n", id)
}

func (c *Controller) closeSession() {
	if c.sess == nil {
		return
	}
	if err := c.sess.Close(); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Close error: %v\n", err)
	}
	c.sess = nil
}

// cmdSession shows the current session state.
func (c *Controller) cmdSession() {
	if c.sess == nil {
		fmt.Fprintln(c.rl.Stdout(), "No session open")
		return
	}

	desc := c.sess.Descriptor()
	policy := c.sess.Policy()

	fmt.Fprintln(c.rl.Stdout(), "\nSession")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(c.rl.Stdout(), "  ID:          %s\n", c.sess.ID())
	fmt.Fprintf(c.rl.Stdout(), "  Device:      %s (%s)\n", desc.Path, desc.Kind)
	fmt.Fprintf(c.rl.Stdout(), "  State:       %s\n", c.sess.State())
	fmt.Fprintf(c.rl.Stdout(), "  Retry count: %d\n", c.sess.RetryCount())
	fmt.Fprintf(c.rl.Stdout(), "  Max retries: %d\n", policy.MaxRetries)
	fmt.Fprintf(c.rl.Stdout(), "  Reopen:      %v\n", policy.Reopen)
	fmt.Fprintln(c.rl.Stdout())
}

func (c *Controller) requireSession() bool {
	if c.sess == nil {
		fmt.Fprintln(c.rl.Stdout(), "No session open (use 'open' first)")
		return false
	}
	return true
}

func (c *Controller) cmdBrightness(args []string) {
	if !c.requireSession() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: brightness <0-255>")
		return
	}

	level, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid brightness: %v\n", err)
		return
	}

	c.report(c.sess.SetBrightness(level))
}

func (c *Controller) cmdPattern(args []string) {
	if !c.requireSession() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: pattern <name>")
		fmt.Fprintln(c.rl.Stdout(), "  Names: gradient, double-gradient, lotus, zigzag, full, panic, lotus2")
		return
	}

	p, err := parsePattern(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "%v\n", err)
		return
	}

	c.report(c.sess.SetPattern(p))
}

func (c *Controller) cmdPercent(args []string) {
	if !c.requireSession() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: percent <0-100>")
		return
	}

	value, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid percentage: %v\n", err)
		return
	}

	c.report(c.sess.SetPercentage(value))
}

func (c *Controller) cmdSleep(sleep bool) {
	if !c.requireSession() {
		return
	}
	c.report(c.sess.SetSleep(sleep))
}

func (c *Controller) cmdAnimate() {
	if !c.requireSession() {
		return
	}
	c.report(c.sess.Animate())
}

// cmdDraw builds a full frame for the open device and delivers it.
func (c *Controller) cmdDraw(args []string) {
	if !c.requireSession() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: draw fill [v] | draw clear | draw box x1 y1 x2 y2 [v]")
		return
	}

	width, height, ok := codec.GridSize(c.sess.Descriptor().Kind)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Device kind %s has no drawable grid\n", c.sess.Descriptor().Kind)
		return
	}
	f := frame.MustNew(width, height)

	switch args[0] {
	case "fill":
		v := byte(255)
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 || n > 255 {
				fmt.Fprintln(c.rl.Stdout(), "Fill value must be 0-255")
				return
			}
			v = byte(n)
		}
		f.Fill(v)

	case "clear":
		// Frame starts cleared.

	case "box":
		if len(args) < 5 {
			fmt.Fprintln(c.rl.Stdout(), "Usage: draw box x1 y1 x2 y2 [v]")
			return
		}
		coords := make([]int, 4)
		for i := 0; i < 4; i++ {
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				fmt.Fprintf(c.rl.Stdout(), "Invalid coordinate: %s\n", args[i+1])
				return
			}
			coords[i] = n
		}
		v := byte(255)
		if len(args) > 5 {
			n, err := strconv.Atoi(args[5])
			if err != nil || n < 0 || n > 255 {
				fmt.Fprintln(c.rl.Stdout(), "Box value must be 0-255")
				return
			}
			v = byte(n)
		}
		f.DrawBox(coords[0], coords[1], coords[2], coords[3], v)

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown draw mode: %s\n", args[0])
		return
	}

	c.report(c.sess.Draw(f))
}

// cmdBitmap delivers a 1-bit test image via the single-shot draw command.
func (c *Controller) cmdBitmap(args []string) {
	if !c.requireSession() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: bitmap checker|border")
		return
	}

	width, height, ok := codec.GridSize(c.sess.Descriptor().Kind)
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Device kind %s has no drawable grid\n", c.sess.Descriptor().Kind)
		return
	}
	b := frame.MustNewBitmap(width, height)

	switch args[0] {
	case "checker":
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				_ = b.Set(x, y, (x+y)%2 == 0)
			}
		}

	case "border":
		for x := 0; x < width; x++ {
			_ = b.Set(x, 0, true)
			_ = b.Set(x, height-1, true)
		}
		for y := 0; y < height; y++ {
			_ = b.Set(0, y, true)
			_ = b.Set(width-1, y, true)
		}

	default:
		fmt.Fprintf(c.rl.Stdout(), "Unknown bitmap: %s\n", args[0])
		return
	}

	c.report(c.sess.DrawBitmap(b))
}

// cmdStatus queries the device status over the open session.
func (c *Controller) cmdStatus() {
	if !c.requireSession() {
		return
	}

	status, err := c.sess.QueryStatus()
	if err != nil {
		c.report(err)
		return
	}

	sleepState := "awake"
	if status.Sleeping {
		sleepState = "sleeping"
	}

	fmt.Fprintln(c.rl.Stdout(), "\nDevice Status")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(c.rl.Stdout(), "  Brightness: %d\n", status.Brightness)
	fmt.Fprintf(c.rl.Stdout(), "  Display:    %s\n", sleepState)
	fmt.Fprintf(c.rl.Stdout(), "  Firmware:   %s\n", status.Version)
	fmt.Fprintln(c.rl.Stdout())
}

// report prints the outcome of a session operation and surfaces the
// terminal session states so the user knows when to reopen.
func (c *Controller) report(err error) {
	if err == nil {
		fmt.Fprintln(c.rl.Stdout(), "OK")
		return
	}

	var sendErr *session.SendError
	switch {
	case errors.As(err, &sendErr):
		fmt.Fprintf(c.rl.Stdout(), "Failed after %d attempts: %v\n", sendErr.Attempts, err)
	default:
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
	}

	if errors.Is(err, session.ErrSessionFailed) || errors.Is(err, session.ErrRetriesExhausted) {
		fmt.Fprintf(c.rl.Stdout(), "Session is %s; use 'open' to start a new one\n", c.sess.State())
	}
}

// parsePattern maps a pattern name to its wire value (case-insensitive).
func parsePattern(s string) (codec.Pattern, error) {
	switch strings.ToLower(s) {
	case "gradient":
		return codec.PatternGradient, nil
	case "double-gradient", "doublegradient":
		return codec.PatternDoubleGradient, nil
	case "lotus":
		return codec.PatternLotus, nil
	case "zigzag":
		return codec.PatternZigZag, nil
	case "full", "full-brightness":
		return codec.PatternFullBrightness, nil
	case "panic":
		return codec.PatternPanic, nil
	case "lotus2":
		return codec.PatternLotus2, nil
	default:
		return 0, fmt.Errorf("unknown pattern: %s (try gradient, double-gradient, lotus, zigzag, full, panic, lotus2)", s)
	}
}

// shortID returns the first 8 characters of a session ID.
func shortID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}
