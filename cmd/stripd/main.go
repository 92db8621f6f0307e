package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/strip.go/pkg/framework"
	"github.com/robotalks/strip.go/pkg/l0/serial"
	"github.com/robotalks/strip.go/pkg/l1/bridge"
	"github.com/robotalks/strip.go/pkg/l1/env"
)

var configFile string

func init() {
	env.SetupFlags()
	env.SetupBridgeFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig()
	if configFile != "" {
		var err error
		if conf, err = env.Load(configFile); err != nil {
			log.Fatalln(err)
		}
	}
	if conf.Port == "" {
		log.Fatalln("serial port must be specified")
	}

	ctl, err := conf.NewController(serial.New())
	if err != nil {
		log.Fatalln(err)
	}
	if err := ctl.Connect(conf.Port); err != nil {
		log.Fatalf("connect %s failed: %v", conf.Port, err)
	}
	defer ctl.Close()

	b, err := bridge.New(conf.MQTTBrokerURL, conf.StripID(), ctl)
	if err != nil {
		log.Fatalf("create MQTT bridge error: %v", err)
	}
	b.Description = conf.Description

	if err := fx.NewRunner().HandleSignals().Go(b).Wait(); err != nil {
		glog.Errorf("stripd: %v", err)
	}
}
