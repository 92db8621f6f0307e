// Package env provides the common configuration of strip commands.
package env

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/strip.go/pkg/l0/serial"
	"github.com/robotalks/strip.go/pkg/l0/strip"
)

// Config provides common options to setup a strip controller and bridge.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyACM0 or COM3.
	Port   string             `yaml:"port"`
	Serial serial.PortOptions `yaml:"serial"`

	SettleDelay  time.Duration `yaml:"settle_delay"`
	AckTimeout   time.Duration `yaml:"ack_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt_url"`
	ID            string `yaml:"id"`
	Description   string `yaml:"description"`
}

var defaultConfig = Config{
	Serial: serial.OptionsFromMode(strip.DefaultMode()),

	SettleDelay:  strip.DefaultSettleDelay,
	AckTimeout:   strip.DefaultAckTimeout,
	ReadTimeout:  strip.DefaultReadTimeout,
	WriteTimeout: strip.DefaultWriteTimeout,

	MQTTBrokerURL: "mqtt://localhost:1883/strip/",
}

func init() {
	if val := os.Getenv("STRIP_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("STRIP_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("STRIP_ID"); val != "" {
		defaultConfig.ID = val
	}
}

// SetupFlags sets serial link flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port of the strip")
	flag.IntVar(&defaultConfig.Serial.BaudRate, "baud", defaultConfig.Serial.BaudRate, "Serial baud rate")
	flag.DurationVar(&defaultConfig.SettleDelay, "settle", defaultConfig.SettleDelay, "Wait after opening the port")
	flag.DurationVar(&defaultConfig.AckTimeout, "ack-timeout", defaultConfig.AckTimeout, "Acknowledgement timeout")
}

// SetupBridgeFlags sets flags used by the MQTT bridge.
func SetupBridgeFlags() {
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Strip ID, defaults to one derived from the machine ID")
	flag.StringVar(&defaultConfig.Description, "description", defaultConfig.Description, "Strip description")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load creates a Config from defaults overlaid with a YAML file.
func Load(path string) (*Config, error) {
	conf := NewConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return conf, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// StripID returns ID or one derived from the machine.
func (c *Config) StripID() string {
	if c.ID != "" {
		return c.ID
	}
	return MachineID()
}

// NewController creates a strip.Controller using the config.
func (c *Config) NewController(t strip.Transport) (*strip.Controller, error) {
	mode, err := c.Serial.Mode()
	if err != nil {
		return nil, err
	}
	ctl := strip.NewController(t)
	ctl.Mode = mode
	ctl.SettleDelay = c.SettleDelay
	if c.AckTimeout > 0 {
		ctl.AckTimeout = c.AckTimeout
	}
	if c.ReadTimeout > 0 {
		ctl.ReadTimeout = c.ReadTimeout
	}
	if c.WriteTimeout > 0 {
		ctl.WriteTimeout = c.WriteTimeout
	}
	return ctl, nil
}
