package serial

import (
	"fmt"
	"strings"

	goserial "go.bug.st/serial"

	"github.com/robotalks/strip.go/pkg/l0/strip"
)

// PortOptions describes the serial line parameters. Unset fields take the
// strip firmware defaults (9600 8N1).
type PortOptions struct {
	BaudRate int    `json:"baud_rate" yaml:"baud_rate"`
	DataBits int    `json:"data_bits" yaml:"data_bits"`
	StopBits int    `json:"stop_bits" yaml:"stop_bits"`
	Parity   string `json:"parity" yaml:"parity"`
}

// OptionsFromMode converts a strip.Mode.
func OptionsFromMode(mode strip.Mode) PortOptions {
	opts := PortOptions{
		BaudRate: mode.BaudRate,
		DataBits: mode.DataBits,
		StopBits: mode.StopBits,
	}
	switch mode.Parity {
	case strip.OddParity:
		opts.Parity = "O"
	case strip.EvenParity:
		opts.Parity = "E"
	default:
		opts.Parity = "N"
	}
	return opts
}

// Mode converts the options back to a strip.Mode.
func (o PortOptions) Mode() (strip.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return strip.Mode{}, err
	}
	mode := strip.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: opts.StopBits,
	}
	switch opts.Parity {
	case "O":
		mode.Parity = strip.OddParity
	case "E":
		mode.Parity = strip.EvenParity
	}
	return mode, nil
}

// Normalize validates the options and fills defaults.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o
	def := strip.DefaultMode()

	if opts.BaudRate <= 0 {
		opts.BaudRate = def.BaudRate
	}

	if opts.DataBits == 0 {
		opts.DataBits = def.DataBits
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}

	if opts.StopBits == 0 {
		opts.StopBits = def.StopBits
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	opts.Parity = parity
	return opts, nil
}

// Equal reports whether both options describe the same line settings.
func (o PortOptions) Equal(other PortOptions) bool {
	a, errA := o.Normalize()
	b, errB := other.Normalize()
	return errA == nil && errB == nil && a == b
}

// SerialMode converts the options for go.bug.st/serial.
func (o PortOptions) SerialMode() (*goserial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	mode := &goserial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: goserial.OneStopBit,
	}
	if opts.StopBits == 2 {
		mode.StopBits = goserial.TwoStopBits
	}
	switch opts.Parity {
	case "N":
		mode.Parity = goserial.NoParity
	case "E":
		mode.Parity = goserial.EvenParity
	case "O":
		mode.Parity = goserial.OddParity
	}
	return mode, nil
}
