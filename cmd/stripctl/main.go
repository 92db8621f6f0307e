package main

//go-build: CGO_ENABLED=0

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/robotalks/strip.go/pkg/cli/sh"
	"github.com/robotalks/strip.go/pkg/l0/serial"
	"github.com/robotalks/strip.go/pkg/l0/strip"
	"github.com/robotalks/strip.go/pkg/l1/env"

	_ "github.com/robotalks/strip.go/pkg/cli/cmds/strip"
)

var (
	listPorts  bool
	configFile string
)

func init() {
	flag.CommandLine.Init(os.Args[0], flag.ContinueOnError)
	flag.CommandLine.Usage = usage
	env.SetupFlags()
	flag.BoolVar(&listPorts, "list-ports", listPorts, "List available serial ports.")
	flag.StringVar(&configFile, "config", configFile, "YAML config file.")
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [options] [COMMAND ARGS...]\n", os.Args[0])
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
	fmt.Fprintln(out, "\nExample:")
	fmt.Fprintf(out, "  %s -list-ports\n", os.Args[0])
	fmt.Fprintf(out, "  %s -port /dev/ttyACM0 -e fill 0 35 red\n", os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	if err := flag.CommandLine.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(1)
	}

	transport := serial.New()
	if listPorts {
		fmt.Print(sh.FormatPorts(strip.ListPorts(transport)))
		return
	}

	conf := env.NewConfig()
	if configFile != "" {
		var err error
		if conf, err = env.Load(configFile); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	ctl, err := conf.NewController(transport)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := sh.New(conf, ctl).Run(flag.Args()...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
