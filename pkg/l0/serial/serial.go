// Package serial implements strip.Transport on top of go.bug.st/serial.
package serial

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	goserial "go.bug.st/serial"

	fx "github.com/robotalks/strip.go/pkg/framework"
	"github.com/robotalks/strip.go/pkg/l0/strip"
)

// Opener opens a serial device. It is replaced in tests.
type Opener func(name string, mode *goserial.Mode) (goserial.Port, error)

// Lister enumerates serial devices.
type Lister func() ([]string, error)

// Transport opens serial devices for the strip controller.
type Transport struct {
	Opener Opener
	Lister Lister
	// Stat resolves device paths before opening. Names which are not
	// absolute paths (e.g. COM3) are left to the opener.
	Stat func(name string) (fs.FileInfo, error)
}

// New creates a Transport backed by the operating system serial driver.
func New() *Transport {
	return &Transport{
		Opener: goserial.Open,
		Lister: goserial.GetPortsList,
		Stat:   os.Stat,
	}
}

// Open implements strip.Transport.
func (t *Transport) Open(name string, mode strip.Mode) (strip.Port, error) {
	if t.Stat != nil && strings.HasPrefix(name, "/") {
		if _, err := t.Stat(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", name, strip.ErrPortNotFound)
			}
			return nil, err
		}
	}
	serialMode, err := OptionsFromMode(mode).SerialMode()
	if err != nil {
		return nil, err
	}
	p, err := t.Opener(name, serialMode)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%s: %w", name, strip.ErrPortNotFound)
		}
		return nil, err
	}
	glog.V(2).Infof("opened %s at %d baud", name, serialMode.BaudRate)
	return &Port{Port: p, name: name, readTimeout: -1}, nil
}

// Ports implements strip.Transport.
func (t *Transport) Ports() ([]string, error) {
	return t.Lister()
}

func isNotFound(err error) bool {
	var portErr *goserial.PortError
	if errors.As(err, &portErr) && portErr.Code() == goserial.PortNotFound {
		return true
	}
	return errors.Is(err, fs.ErrNotExist)
}

// Port adapts goserial.Port to strip.Port.
type Port struct {
	goserial.Port

	name        string
	readTimeout time.Duration
	closed      bool
	writing     bool
	lock        sync.Mutex
}

// Name returns the device name.
func (p *Port) Name() string {
	return p.name
}

// Read implements strip.Port. A timeout of zero or less blocks.
func (p *Port) Read(b []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = goserial.NoTimeout
	}
	if timeout != p.readTimeout {
		if err := p.Port.SetReadTimeout(timeout); err != nil {
			return 0, err
		}
		p.readTimeout = timeout
	}
	return p.Port.Read(b)
}

type writeResult struct {
	n   int
	err error
}

// Write implements strip.Port. The OS driver has no write deadline, so the
// write runs aside and is abandoned when the timeout expires. Until the
// abandoned write returns, further writes fail with strip.ErrWriteTimeout
// so bytes of two frames never overlap on the line.
func (p *Port) Write(b []byte, timeout time.Duration) (int, error) {
	p.lock.Lock()
	if p.writing {
		p.lock.Unlock()
		return 0, strip.ErrWriteTimeout
	}
	p.writing = true
	p.lock.Unlock()

	resCh := make(chan writeResult, 1)
	go func() {
		n, err := p.Port.Write(b)
		p.lock.Lock()
		p.writing = false
		p.lock.Unlock()
		resCh <- writeResult{n: n, err: err}
	}()
	if timeout <= 0 {
		res := <-resCh
		return res.n, res.err
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case res := <-resCh:
		return res.n, res.err
	case <-timer.C:
		glog.Warningf("%s: write abandoned after %v", p.name, timeout)
		return 0, strip.ErrWriteTimeout
	}
}

func (p *Port) writeBusy() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.writing
}

// Flush implements strip.Port.
func (p *Port) Flush() error {
	var errs fx.AggregatedError
	errs.Add(p.Port.ResetInputBuffer(), p.Port.ResetOutputBuffer())
	return errs.Aggregate()
}

// Close implements strip.Port. Only the first call closes the device.
func (p *Port) Close() error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.Port.Close()
}
