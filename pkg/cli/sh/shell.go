package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/strip.go/pkg/l0/strip"
	"github.com/robotalks/strip.go/pkg/l1/env"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell      *ishell.Shell
	Config     *env.Config
	Controller *strip.Controller

	failed bool
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// ErrCommandFailed is returned by Run when any command reported an error.
var ErrCommandFailed = errors.New("command failed")

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config, ctl *strip.Controller) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:      ishell.New(),
		Config:     conf,
		Controller: ctl,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if !ShellFrom(c).Controller.IsConnected() {
			ShellFrom(c).Fail(c, strip.ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Fail reports err and marks the session failed.
func (s *Shell) Fail(c *ishell.Context, err error) {
	s.failed = true
	c.Err(err)
}

// Done prints OK or reports err.
func (s *Shell) Done(c *ishell.Context, err error) {
	if err != nil {
		s.Fail(c, err)
		return
	}
	if s.OutputJSON {
		c.Println(`{"ok":true}`)
		return
	}
	c.Println("OK")
}

// Result prints a queried value, as JSON when requested.
func (s *Shell) Result(c *ishell.Context, v interface{}, text string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			s.Fail(c, err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text)
}

// Connect connects the strip on port.
func (s *Shell) Connect(port string) error {
	if err := s.Controller.Connect(port); err != nil {
		return err
	}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", port))
	return nil
}

// Disconnect disconnects current strip.
func (s *Shell) Disconnect() error {
	s.Shell.SetPrompt(unconnectedPrompt)
	return s.Controller.Disconnect()
}

// Run runs the shell. With args, only the command is evaluated.
func (s *Shell) Run(args ...string) error {
	defer s.Controller.Close()
	if s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting to %s ...\n", s.Config.Port)
		}
		if err := s.Connect(s.Config.Port); err != nil {
			return fmt.Errorf("connect %s: %w", s.Config.Port, err)
		}
		if s.Interactive {
			s.Shell.Printf("Connected to %s\n", s.Config.Port)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			return err
		}
	} else if s.Interactive {
		s.Shell.Run()
	} else {
		return errors.New("command expected")
	}
	if s.failed {
		return ErrCommandFailed
	}
	return nil
}

// FormatPorts renders the port list the way the ports command prints it.
func FormatPorts(ports []string) string {
	out := "Available serial ports:\n"
	if len(ports) == 0 {
		return out + "  No ports found\n"
	}
	for _, port := range ports {
		out += "  " + port + "\n"
	}
	return out
}

// Status describes the connection.
type Status struct {
	Connected bool   `json:"connected"`
	Port      string `json:"port,omitempty"`
}

// String implements fmt.Stringer.
func (st Status) String() string {
	if !st.Connected {
		return "not connected"
	}
	return "connected to " + st.Port
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "list serial ports",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ports := s.Controller.ListPorts()
			if s.OutputJSON {
				s.Result(c, ports, "")
				return
			}
			c.Print(FormatPorts(ports))
		},
	}

	// ConnectCmd connects a strip.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "PORT",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			port := s.Config.Port
			if len(c.Args) > 0 {
				port = c.Args[0]
			}
			if port == "" {
				s.Fail(c, errors.New("port required"))
				return
			}
			s.Done(c, s.Connect(port))
		},
	}

	// DisconnectCmd disconnects current strip.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			s.Done(c, s.Disconnect())
		},
	}

	// StatusCmd shows the connection.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Help: "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			st := Status{Connected: s.Controller.IsConnected(), Port: s.Controller.Port()}
			s.Result(c, st, st.String())
		},
	}
)
