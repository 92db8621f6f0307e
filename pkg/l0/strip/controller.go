package strip

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Defaults used by NewController.
const (
	DefaultSettleDelay  = 2 * time.Second
	DefaultAckTimeout   = time.Second
	DefaultReadTimeout  = time.Second
	DefaultWriteTimeout = time.Second
)

// MaxColors is the largest payload a single SetLEDData can carry.
const MaxColors = 0xffff

// Controller manages one serial connection to the strip firmware and
// performs each strip command as a single request/acknowledgement
// transaction.
type Controller struct {
	Transport Transport
	Mode      Mode

	// SettleDelay is waited after opening so the firmware can finish
	// the reset most boards perform when the port opens.
	SettleDelay  time.Duration
	AckTimeout   time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	port      Port
	portName  string
	connected bool
	lock      sync.Mutex
}

// NewController creates a Controller with default link settings.
func NewController(t Transport) *Controller {
	return &Controller{
		Transport:    t,
		Mode:         DefaultMode(),
		SettleDelay:  DefaultSettleDelay,
		AckTimeout:   DefaultAckTimeout,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Connect opens the named port. An existing connection is closed first.
func (c *Controller) Connect(name string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.connected || c.port != nil {
		if err := c.disconnect(); err != nil {
			glog.Warningf("reconnect: %v", err)
		}
	}

	port, err := c.Transport.Open(name, c.Mode)
	if err != nil {
		glog.Errorf("open port %s: %v", name, err)
		if errors.Is(err, ErrPortNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrPortOpen, err)
	}

	if c.SettleDelay > 0 {
		time.Sleep(c.SettleDelay)
	}
	if err := port.Flush(); err != nil {
		glog.Warningf("flush %s: %v", name, err)
	}

	c.port, c.portName, c.connected = port, name, true
	glog.Infof("connected to %s", name)
	return nil
}

// Disconnect closes the port if one is open. It's safe to call repeatedly.
func (c *Controller) Disconnect() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.disconnect()
}

// Close implements io.Closer.
func (c *Controller) Close() error {
	return c.Disconnect()
}

func (c *Controller) disconnect() (err error) {
	if c.port != nil {
		if err = c.port.Close(); err != nil {
			err = fmt.Errorf("close %s: %w", c.portName, err)
		}
		glog.V(2).Infof("disconnected from %s", c.portName)
	}
	c.port, c.portName, c.connected = nil, "", false
	return
}

// IsConnected reports whether a port is open.
func (c *Controller) IsConnected() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.connected
}

// Port returns the name of the connected port.
func (c *Controller) Port() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.portName
}

// ListPorts enumerates serial devices through the controller's transport.
func (c *Controller) ListPorts() []string {
	return ListPorts(c.Transport)
}

// ListPorts enumerates serial devices. Enumeration failures yield
// an empty list.
func ListPorts(t Transport) []string {
	names, err := t.Ports()
	if err != nil {
		glog.Warningf("list ports: %v", err)
		return []string{}
	}
	if names == nil {
		return []string{}
	}
	return names
}

// SetStripLength sets the number of LEDs driven by the firmware.
func (c *Controller) SetStripLength(length uint16) error {
	return c.Do(&Command{Op: OpSetLength, Words: []uint16{length}}, nil)
}

// FillLEDs sets count LEDs starting at first to one color.
func (c *Controller) FillLEDs(first, count uint16, color Color) error {
	return c.Do(&Command{
		Op:     OpFill,
		Words:  []uint16{first, count},
		Colors: []Color{color},
	}, nil)
}

// SetLEDData writes individual colors starting at first.
func (c *Controller) SetLEDData(first uint16, colors []Color) error {
	switch {
	case len(colors) == 0:
		return c.reject(OpReceiveData, ErrEmptyPayload)
	case len(colors) > MaxColors:
		return c.reject(OpReceiveData, ErrPayloadTooLarge)
	}
	return c.Do(&Command{
		Op:     OpReceiveData,
		Words:  []uint16{first, uint16(len(colors))},
		Colors: colors,
	}, nil)
}

// OutputData latches the buffered colors onto the strip.
func (c *Controller) OutputData() error {
	return c.Do(&Command{Op: OpOutput}, nil)
}

// ClearAll turns every LED off.
func (c *Controller) ClearAll() error {
	return c.Do(&Command{Op: OpClear}, nil)
}

// Version queries the firmware version.
func (c *Controller) Version() (v Version, err error) {
	reply := make([]byte, 2)
	if err = c.Do(&Command{Op: OpVersion}, reply); err == nil {
		v.Major, v.Minor = reply[0], reply[1]
	}
	return
}

// MaxLEDs queries the largest strip length the firmware supports.
func (c *Controller) MaxLEDs() (n uint16, err error) {
	reply := make([]byte, 2)
	if err = c.Do(&Command{Op: OpMaxLEDs}, reply); err == nil {
		n = Word([2]byte{reply[0], reply[1]})
	}
	return
}

// Do runs one transaction: it sends cmd, fills reply byte by byte from
// the firmware, then waits for the acknowledgement.
func (c *Controller) Do(cmd *Command, reply []byte) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.connected {
		return &OpError{Op: cmd.Op, Err: ErrNotConnected}
	}
	if glog.V(2) {
		glog.Infof("SEND %s % x", cmd.Op, cmd.Bytes())
	}
	for _, seg := range cmd.segments() {
		if err := c.send(seg); err != nil {
			return &OpError{Op: cmd.Op, Err: err}
		}
	}
	for i := range reply {
		b, err := c.readByte(c.ReadTimeout)
		if err != nil {
			return &OpError{Op: cmd.Op, Err: err}
		}
		reply[i] = b
	}
	if err := c.waitForAck(); err != nil {
		glog.Warningf("%s: %v", cmd.Op, err)
		return &OpError{Op: cmd.Op, Err: err}
	}
	return nil
}

func (c *Controller) reject(op Opcode, err error) error {
	if !c.IsConnected() {
		err = ErrNotConnected
	}
	return &OpError{Op: op, Err: err}
}

func (c *Controller) send(b []byte) error {
	n, err := c.port.Write(b, c.WriteTimeout)
	switch {
	case errors.Is(err, ErrWriteTimeout):
		return err
	case err != nil:
		return fmt.Errorf("%w: %w", ErrWrite, err)
	case n < len(b):
		return ErrWriteTimeout
	}
	return nil
}

func (c *Controller) readByte(timeout time.Duration) (byte, error) {
	var buf [1]byte
	n, err := c.port.Read(buf[:], timeout)
	switch {
	case errors.Is(err, ErrReadTimeout):
		return 0, err
	case err != nil:
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	case n == 0:
		return 0, ErrReadTimeout
	}
	return buf[0], nil
}

func (c *Controller) waitForAck() error {
	b, err := c.readByte(c.AckTimeout)
	if err != nil {
		return err
	}
	glog.V(2).Infof("RECV %q", b)
	switch b {
	case Ack:
		return nil
	case Nack:
		return ErrNegativeAck
	default:
		return &UnexpectedResponseError{Got: b}
	}
}
