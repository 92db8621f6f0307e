package serial

import (
	"errors"
	"io/fs"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	goserial "go.bug.st/serial"

	"github.com/robotalks/strip.go/pkg/l0/strip"
)

// MockSerialPort implements goserial.Port for testing.
type MockSerialPort struct {
	mu sync.Mutex

	readData     []byte
	writtenData  []byte
	writeBlock   chan struct{}
	writing      int
	maxWriting   int
	resetErr     error
	closeErr     error
	closed       int
	inputResets  int
	outputResets int
	timeouts     []time.Duration
}

func (m *MockSerialPort) Break(time.Duration) error                              { return nil }
func (m *MockSerialPort) Drain() error                                           { return nil }
func (m *MockSerialPort) GetModemStatusBits() (*goserial.ModemStatusBits, error) { return nil, nil }
func (m *MockSerialPort) SetDTR(dtr bool) error                                  { return nil }
func (m *MockSerialPort) SetMode(mode *goserial.Mode) error                      { return nil }
func (m *MockSerialPort) SetRTS(rts bool) error                                  { return nil }

func (m *MockSerialPort) ResetInputBuffer() error {
	m.inputResets++
	return m.resetErr
}

func (m *MockSerialPort) ResetOutputBuffer() error {
	m.outputResets++
	return nil
}

func (m *MockSerialPort) SetReadTimeout(t time.Duration) error {
	m.timeouts = append(m.timeouts, t)
	return nil
}

func (m *MockSerialPort) Read(p []byte) (int, error) {
	if len(m.readData) == 0 {
		// timed out
		return 0, nil
	}
	n := copy(p, m.readData)
	m.readData = m.readData[n:]
	return n, nil
}

func (m *MockSerialPort) Write(p []byte) (int, error) {
	m.mu.Lock()
	m.writing++
	if m.writing > m.maxWriting {
		m.maxWriting = m.writing
	}
	block := m.writeBlock
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writing--
	m.writtenData = append(m.writtenData, p...)
	return len(p), nil
}

func (m *MockSerialPort) Close() error {
	m.closed++
	return m.closeErr
}

type fakeFileInfo struct {
	fs.FileInfo
}

func newTestTransport(mock *MockSerialPort, openErr error) (*Transport, *[]*goserial.Mode) {
	var modes []*goserial.Mode
	return &Transport{
		Opener: func(name string, mode *goserial.Mode) (goserial.Port, error) {
			modes = append(modes, mode)
			if openErr != nil {
				return nil, openErr
			}
			return mock, nil
		},
		Lister: func() ([]string, error) { return []string{"/dev/ttyACM0"}, nil },
		Stat:   func(string) (fs.FileInfo, error) { return fakeFileInfo{}, nil },
	}, &modes
}

func TestOpenAppliesMode(t *testing.T) {
	tr, modes := newTestTransport(&MockSerialPort{}, nil)
	p, err := tr.Open("/dev/ttyACM0", strip.DefaultMode())
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM0", p.(*Port).Name())
	require.Len(t, *modes, 1)
	require.Equal(t, &goserial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	}, (*modes)[0])
}

func TestOpenMissingDevicePath(t *testing.T) {
	tr, modes := newTestTransport(&MockSerialPort{}, nil)
	tr.Stat = func(string) (fs.FileInfo, error) {
		return nil, &fs.PathError{Op: "stat", Path: "/dev/nope", Err: fs.ErrNotExist}
	}
	_, err := tr.Open("/dev/nope", strip.DefaultMode())
	require.True(t, errors.Is(err, strip.ErrPortNotFound))
	require.Empty(t, *modes)
}

func TestOpenSkipsStatForNonPaths(t *testing.T) {
	tr, modes := newTestTransport(&MockSerialPort{}, nil)
	tr.Stat = func(string) (fs.FileInfo, error) { return nil, os.ErrNotExist }
	_, err := tr.Open("COM3", strip.DefaultMode())
	require.NoError(t, err)
	require.Len(t, *modes, 1)
}

func TestOpenErrors(t *testing.T) {
	tr, _ := newTestTransport(nil, os.ErrNotExist)
	_, err := tr.Open("COM9", strip.DefaultMode())
	require.True(t, errors.Is(err, strip.ErrPortNotFound))

	busy := errors.New("port busy")
	tr, _ = newTestTransport(nil, busy)
	_, err = tr.Open("/dev/ttyACM0", strip.DefaultMode())
	require.Equal(t, busy, err)
}

func TestOpenInvalidMode(t *testing.T) {
	tr, modes := newTestTransport(&MockSerialPort{}, nil)
	_, err := tr.Open("/dev/ttyACM0", strip.Mode{DataBits: 9})
	require.Error(t, err)
	require.Empty(t, *modes)
}

func TestPorts(t *testing.T) {
	tr, _ := newTestTransport(nil, nil)
	ports, err := tr.Ports()
	require.NoError(t, err)
	require.Equal(t, []string{"/dev/ttyACM0"}, ports)
}

func TestPortRead(t *testing.T) {
	mock := &MockSerialPort{readData: []byte{'A'}}
	p := &Port{Port: mock, readTimeout: -1}
	buf := make([]byte, 1)

	n, err := p.Read(buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, byte('A'), buf[0])

	n, err = p.Read(buf, time.Second)
	require.NoError(t, err)
	require.Zero(t, n)
	// timeout is only applied when it changes
	require.Equal(t, []time.Duration{time.Second}, mock.timeouts)

	_, err = p.Read(buf, 0)
	require.NoError(t, err)
	require.Equal(t, []time.Duration{time.Second, goserial.NoTimeout}, mock.timeouts)
}

func TestPortWrite(t *testing.T) {
	mock := &MockSerialPort{}
	p := &Port{Port: mock}
	n, err := p.Write([]byte{'O'}, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []byte{'O'}, mock.writtenData)
}

func TestPortWriteTimeout(t *testing.T) {
	mock := &MockSerialPort{writeBlock: make(chan struct{})}
	defer close(mock.writeBlock)
	p := &Port{Port: mock}
	n, err := p.Write([]byte{'O'}, 10*time.Millisecond)
	require.Zero(t, n)
	require.True(t, errors.Is(err, strip.ErrWriteTimeout))
}

func TestPortWriteAfterTimeoutWaitsForPendingWrite(t *testing.T) {
	block := make(chan struct{})
	mock := &MockSerialPort{writeBlock: block}
	p := &Port{Port: mock}

	_, err := p.Write([]byte{'F', 0x00}, 10*time.Millisecond)
	require.True(t, errors.Is(err, strip.ErrWriteTimeout))

	// the abandoned write still owns the line
	n, err := p.Write([]byte{'O'}, 10*time.Millisecond)
	require.Zero(t, n)
	require.True(t, errors.Is(err, strip.ErrWriteTimeout))

	block <- struct{}{}
	require.Eventually(t, func() bool { return !p.writeBusy() }, time.Second, time.Millisecond)

	mock.mu.Lock()
	mock.writeBlock = nil
	mock.mu.Unlock()
	n, err = p.Write([]byte{'O'}, time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	mock.mu.Lock()
	defer mock.mu.Unlock()
	require.Equal(t, 1, mock.maxWriting)
	require.Equal(t, []byte{'F', 0x00, 'O'}, mock.writtenData)
}

func TestPortFlush(t *testing.T) {
	mock := &MockSerialPort{}
	p := &Port{Port: mock}
	require.NoError(t, p.Flush())
	require.Equal(t, 1, mock.inputResets)
	require.Equal(t, 1, mock.outputResets)

	mock.resetErr = errors.New("reset failed")
	require.Error(t, p.Flush())
	require.Equal(t, 2, mock.outputResets)
}

func TestPortCloseOnce(t *testing.T) {
	mock := &MockSerialPort{}
	p := &Port{Port: mock}
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.Equal(t, 1, mock.closed)
}

func TestControllerOverSerial(t *testing.T) {
	mock := &MockSerialPort{readData: []byte{0x01, 0x2c, 'A'}}
	tr, _ := newTestTransport(mock, nil)
	ctl := strip.NewController(tr)
	ctl.SettleDelay = 0
	require.NoError(t, ctl.Connect("/dev/ttyACM0"))
	defer ctl.Close()
	require.Equal(t, 1, mock.inputResets)

	n, err := ctl.MaxLEDs()
	require.NoError(t, err)
	require.Equal(t, uint16(300), n)
	require.Equal(t, []byte{'M'}, mock.writtenData)

	require.NoError(t, ctl.Disconnect())
	require.Equal(t, 1, mock.closed)
}
