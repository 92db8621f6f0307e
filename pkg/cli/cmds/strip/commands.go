// Package strip registers the strip commands with the shell.
package strip

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/strip.go/pkg/cli/sh"
	"github.com/robotalks/strip.go/pkg/l0/strip"
)

// ParseCount parses a 16-bit LED index or count.
func ParseCount(name, arg string) (uint16, error) {
	v, err := strconv.ParseUint(arg, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: expect 0-65535", name, arg)
	}
	return uint16(v), nil
}

// ParseColors parses each arg with strip.ParseColor.
func ParseColors(args []string) ([]strip.Color, error) {
	colors := make([]strip.Color, 0, len(args))
	for _, arg := range args {
		color, err := strip.ParseColor(arg)
		if err != nil {
			return nil, err
		}
		colors = append(colors, color)
	}
	return colors, nil
}

func usage(c *ishell.Context, n int) bool {
	if len(c.Args) < n {
		sh.ShellFrom(c).Fail(c, fmt.Errorf("usage: %s %s", c.Cmd.Name, c.Cmd.Help))
		return false
	}
	return true
}

var (
	// LengthCmd sets the strip length.
	LengthCmd = ishell.Cmd{
		Name: "length",
		Help: "N",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if !usage(c, 1) {
				return
			}
			s := sh.ShellFrom(c)
			n, err := ParseCount("length", c.Args[0])
			if err != nil {
				s.Fail(c, err)
				return
			}
			s.Done(c, s.Controller.SetStripLength(n))
		}),
	}

	// FillCmd fills a range with one color.
	FillCmd = ishell.Cmd{
		Name:    "fill",
		Aliases: []string{"f"},
		Help:    "FIRST COUNT COLOR",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if !usage(c, 3) {
				return
			}
			s := sh.ShellFrom(c)
			first, err := ParseCount("first", c.Args[0])
			if err != nil {
				s.Fail(c, err)
				return
			}
			count, err := ParseCount("count", c.Args[1])
			if err != nil {
				s.Fail(c, err)
				return
			}
			color, err := strip.ParseColor(c.Args[2])
			if err != nil {
				s.Fail(c, err)
				return
			}
			s.Done(c, s.Controller.FillLEDs(first, count, color))
		}),
	}

	// SetCmd writes individual colors.
	SetCmd = ishell.Cmd{
		Name:    "set",
		Aliases: []string{"s"},
		Help:    "FIRST COLOR...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if !usage(c, 2) {
				return
			}
			s := sh.ShellFrom(c)
			first, err := ParseCount("first", c.Args[0])
			if err != nil {
				s.Fail(c, err)
				return
			}
			colors, err := ParseColors(c.Args[1:])
			if err != nil {
				s.Fail(c, err)
				return
			}
			s.Done(c, s.Controller.SetLEDData(first, colors))
		}),
	}

	// OutputCmd latches buffered colors.
	OutputCmd = ishell.Cmd{
		Name:    "output",
		Aliases: []string{"o"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			s.Done(c, s.Controller.OutputData())
		}),
	}

	// ClearCmd turns all LEDs off.
	ClearCmd = ishell.Cmd{
		Name: "clear",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			s.Done(c, s.Controller.ClearAll())
		}),
	}

	// VersionCmd queries the firmware version.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"v"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			v, err := s.Controller.Version()
			if err != nil {
				s.Fail(c, err)
				return
			}
			s.Result(c, v, "Firmware version: "+v.String())
		}),
	}

	// MaxCmd queries the maximum strip length.
	MaxCmd = ishell.Cmd{
		Name:    "max",
		Aliases: []string{"m"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			s := sh.ShellFrom(c)
			n, err := s.Controller.MaxLEDs()
			if err != nil {
				s.Fail(c, err)
				return
			}
			s.Result(c, map[string]uint16{"max_leds": n}, fmt.Sprintf("Max LEDs per strip: %d", n))
		}),
	}
)

func init() {
	sh.AddCmds(
		&LengthCmd,
		&FillCmd,
		&SetCmd,
		&OutputCmd,
		&ClearCmd,
		&VersionCmd,
		&MaxCmd,
	)
}
