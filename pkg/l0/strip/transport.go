package strip

import "time"

// Parity defines serial parity options.
type Parity int

// Parity values.
const (
	NoParity Parity = iota
	OddParity
	EvenParity
)

// Mode is the link configuration applied when a port is opened.
type Mode struct {
	BaudRate int
	DataBits int
	Parity   Parity
	StopBits int
}

// DefaultMode returns 9600 baud 8N1, which the firmware expects.
// Flow control is always off.
func DefaultMode() Mode {
	return Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   NoParity,
		StopBits: 1,
	}
}

// Transport resolves, opens and enumerates serial devices.
type Transport interface {
	// Open resolves name, opens it for read/write and applies mode.
	// It returns ErrPortNotFound (possibly wrapped) if name doesn't resolve.
	Open(name string, mode Mode) (Port, error)
	// Ports lists visible device names.
	Ports() ([]string, error)
}

// Port is an open byte stream with bounded blocking I/O.
type Port interface {
	// Write blocks up to timeout. Fewer bytes than len(p) with a nil
	// error means the timeout expired.
	Write(p []byte, timeout time.Duration) (int, error)
	// Read blocks up to timeout. (0, nil) means nothing arrived in time.
	Read(p []byte, timeout time.Duration) (int, error)
	// Flush discards buffered input and output.
	Flush() error
	// Close closes and releases the port.
	Close() error
}
