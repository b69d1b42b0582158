// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcd1602 drives an HD44780 character display behind a PCF8574 backpack.
//
// Usage:
//
//	lcd1602 [options] <command> [arguments]
//
// Commands:
//
//	write <text>                       Append text, \n starts the next row
//	read                               Print the text written in this session
//	clear                              Clear the display
//	backlight on|off                   Switch the backlight
//	shift display|cursor left|right    Shift the display or the cursor
//	home                               Return the cursor home
//	repl                               Read one command per line from stdin
//	serve                              Take commands from an MQTT broker
//
// Every invocation attaches the display, which clears it. A write therefore
// replaces the text of the previous invocation, and read is only accepted
// within repl and serve, where it reports the text written in the session.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/GermanBionicSystems/lcd1602/hd44780"
	"github.com/GermanBionicSystems/lcd1602/hd44780sim"
	"github.com/GermanBionicSystems/lcd1602/mqttcmd"
	"github.com/GermanBionicSystems/lcd1602/pcf857x"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var (
	busName = flag.String("bus", "", "I²C bus name, empty for the first one")
	addr    = flag.String("addr", "0x27", "I²C address of the backpack")
	lines   = flag.String("lines", "", "use GPIO lines instead of a backpack: d4=NAME,d5=NAME,...,bl=NAME")
	rows    = flag.Int("rows", hd44780.DefaultOpts.Rows, "display rows")
	cols    = flag.Int("cols", hd44780.DefaultOpts.Cols, "display columns")
	sim     = flag.Bool("sim", false, "use the simulated display")
	pngPath = flag.String("png", "", "with -sim, write a snapshot of the display to this PNG file")
	verbose = flag.Bool("v", false, "verbose output")
	broker  = flag.String("broker", "localhost:1883", "MQTT broker address for serve")
	topic   = flag.String("topic", mqttcmd.DefaultTopic, "MQTT command topic")
	reply   = flag.String("reply", mqttcmd.DefaultReplyTopic, "MQTT topic for read replies")
	id      = flag.String("id", "lcd1602", "MQTT client ID")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [arguments]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  write <text>                     Append text, \\n starts the next row")
		fmt.Fprintln(os.Stderr, "  read                             Print the text written in this session (repl, serve)")
		fmt.Fprintln(os.Stderr, "  clear                            Clear the display")
		fmt.Fprintln(os.Stderr, "  backlight on|off                 Switch the backlight")
		fmt.Fprintln(os.Stderr, "  shift display|cursor left|right  Shift the display or the cursor")
		fmt.Fprintln(os.Stderr, "  home                             Return the cursor home")
		fmt.Fprintln(os.Stderr, "  repl                             Read one command per line from stdin")
		fmt.Fprintln(os.Stderr, "  serve                            Take commands from an MQTT broker")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logrus.StandardLogger()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(log, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// display is an attached dispatcher and, in simulation, its controller.
type display struct {
	disp *hd44780.Dispatcher
	sim  *hd44780sim.Controller
	term *hd44780sim.Terminal
}

func run(log *logrus.Logger, args []string) error {
	if err := checkOneShot(args); err != nil {
		return err
	}
	d, err := open(log)
	if err != nil {
		return err
	}
	switch args[0] {
	case "repl":
		err = d.repl(os.Stdin)
	case "serve":
		err = d.serve(log)
	default:
		err = d.exec(args)
	}
	if err != nil {
		return err
	}
	return d.snapshot()
}

func open(log *logrus.Logger) (*display, error) {
	address, err := strconv.ParseUint(*addr, 0, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", *addr, err)
	}
	d := &display{disp: hd44780.NewDispatcher(nil, log)}
	var l hd44780.Lines
	switch {
	case *sim:
		d.sim = hd44780sim.New()
		d.term = hd44780sim.NewTerminal(*cols, nil)
		pcf, err := pcf857x.New(hd44780sim.NewBus(d.sim, uint16(address)), uint16(address), pcf857x.PCF8574)
		if err != nil {
			return nil, err
		}
		l = hd44780.PCF8574Lines(pcf)
	case *lines != "":
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		names, err := hd44780.ParseLineNames(*lines)
		if err != nil {
			return nil, err
		}
		if l, err = hd44780.ResolveLines(names); err != nil {
			return nil, err
		}
	default:
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		bus, err := i2creg.Open(*busName)
		if err != nil {
			return nil, fmt.Errorf("failed to open I²C: %w", err)
		}
		pcf, err := pcf857x.New(bus, uint16(address), pcf857x.PCF8574)
		if err != nil {
			return nil, err
		}
		l = hd44780.PCF8574Lines(pcf)
	}
	opts := hd44780.DefaultOpts
	opts.Rows = *rows
	opts.Cols = *cols
	if _, err := d.disp.Attach(l, &opts); err != nil {
		return nil, err
	}
	return d, nil
}

// checkOneShot rejects commands that can't do anything useful as a single
// invocation: attaching clears the buffer, so a read would always be empty.
func checkOneShot(args []string) error {
	if args[0] == "read" {
		return errors.New("read only reports text written in the same session; use it within repl or serve")
	}
	return nil
}

// exec dispatches one command and prints its result.
func (d *display) exec(args []string) error {
	c, err := parseCommand(args)
	if err != nil {
		return err
	}
	resp, err := d.disp.Dispatch(c)
	if err != nil {
		return err
	}
	switch c := c.(type) {
	case hd44780.ReadValue:
		fmt.Printf("%q (%d bytes, row %d)\n", resp.Snapshot.Data, resp.Snapshot.Length, resp.Snapshot.Row)
	case hd44780.WriteValue:
		if resp.Accepted < len(c.Text) {
			fmt.Printf("buffer full: %d of %d bytes written\n", resp.Accepted, len(c.Text))
		}
	}
	if d.term != nil {
		return d.term.Render(d.sim)
	}
	return nil
}

func (d *display) repl(in *os.File) error {
	s := bufio.NewScanner(in)
	for s.Scan() {
		args := strings.Fields(s.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "write" {
			// Keep the spacing of the text.
			text := strings.TrimPrefix(strings.TrimLeft(s.Text(), " \t"), "write")
			args = []string{"write", strings.TrimPrefix(text, " ")}
		}
		if err := d.exec(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return s.Err()
}

func (d *display) serve(log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	conn, err := net.Dial("tcp", *broker)
	if err != nil {
		return err
	}
	srv := &mqttcmd.Server{
		Dispatcher: d.disp,
		ClientID:   *id,
		Topic:      *topic,
		ReplyTopic: *reply,
		Logger:     log,
	}
	err = srv.Serve(ctx, conn)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if e := d.disp.Detach(); err == nil {
		err = e
	}
	return err
}

func (d *display) snapshot() error {
	if d.sim == nil || *pngPath == "" {
		return nil
	}
	f, err := os.Create(*pngPath)
	if err != nil {
		return err
	}
	if err := hd44780sim.WritePNG(f, d.sim, *cols, nil); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// parseCommand turns command line words into a command.
func parseCommand(args []string) (hd44780.Command, error) {
	if len(args) == 0 {
		return nil, errors.New("missing command")
	}
	want := func(n int, usage string) error {
		if len(args) != n {
			return fmt.Errorf("usage: %s", usage)
		}
		return nil
	}
	switch args[0] {
	case "write":
		if len(args) < 2 {
			return nil, errors.New("usage: write <text>")
		}
		return hd44780.WriteValue{Text: unescape(strings.Join(args[1:], " "))}, nil
	case "read":
		return hd44780.ReadValue{}, want(1, "read")
	case "clear":
		return hd44780.ClearScreen{}, want(1, "clear")
	case "home":
		return hd44780.CursorReturn{}, want(1, "home")
	case "backlight":
		if err := want(2, "backlight on|off"); err != nil {
			return nil, err
		}
		switch args[1] {
		case "on":
			return hd44780.BacklightOn{}, nil
		case "off":
			return hd44780.BacklightOff{}, nil
		}
		return nil, fmt.Errorf("backlight: %q is not on or off", args[1])
	case "shift":
		if err := want(3, "shift display|cursor left|right"); err != nil {
			return nil, err
		}
		var c hd44780.Shift
		switch args[1] {
		case "display":
			c.Target = hd44780.ShiftDisplay
		case "cursor":
			c.Target = hd44780.ShiftCursor
		default:
			return nil, fmt.Errorf("shift: %q is not display or cursor", args[1])
		}
		switch args[2] {
		case "left":
			c.Direction = hd44780.Left
		case "right":
			c.Direction = hd44780.Right
		default:
			return nil, fmt.Errorf("shift: %q is not left or right", args[2])
		}
		return c, nil
	}
	return nil, fmt.Errorf("unknown command %q", args[0])
}

// unescape replaces the two character sequence \n with a newline.
func unescape(s string) []byte {
	return []byte(strings.ReplaceAll(s, `\n`, "\n"))
}
