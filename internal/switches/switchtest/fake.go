// Package switchtest provides a scripted switch console for driver tests.
package switchtest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
)

type mode int

const (
	modeMain mode = iota
	modeConfig
	modeInterface
	modeVLAN
)

var (
	vlanRe      = regexp.MustCompile(`^vlan (\d+)$`)
	interfaceRe = regexp.MustCompile(`^interface (?:ethernet )?(\S+)$`)
	accessRe    = regexp.MustCompile(`^switchport access vlan (\d+)$`)
)

// FakeSwitch emulates the CLI shared by the supported switch families:
// main, config, interface and vlan modes with Cisco style prompts.
type FakeSwitch struct {
	Hostname string
	Username string
	Password string // login is skipped when empty
	// HangOn names a command after which the switch stops answering
	HangOn string

	mu       sync.Mutex
	commands []string
	vlans    map[string]bool
	access   map[string]string
	shutdown map[string]bool
}

// New creates a fake switch with the given hostname
func New(hostname string) *FakeSwitch {
	return &FakeSwitch{
		Hostname: hostname,
		vlans:    make(map[string]bool),
		access:   make(map[string]string),
		shutdown: make(map[string]bool),
	}
}

// Commands returns every command received, in order
func (f *FakeSwitch) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands...)
}

// AccessVLAN returns the access vlan of a port, "" when unset
func (f *FakeSwitch) AccessVLAN(port string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.access[port]
}

// HasVLAN reports whether the vlan was created
func (f *FakeSwitch) HasVLAN(vlan string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vlans[vlan]
}

// IsShutdown reports whether the port was administratively shut down
func (f *FakeSwitch) IsShutdown(port string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown[port]
}

func (f *FakeSwitch) prompt(m mode) string {
	switch m {
	case modeConfig:
		return f.Hostname + "(config)#"
	case modeInterface:
		return f.Hostname + "(config-if)#"
	case modeVLAN:
		return f.Hostname + "(config-vlan)#"
	default:
		return f.Hostname + "#"
	}
}

// Serve runs the console on rw until the peer exits or disconnects
func (f *FakeSwitch) Serve(rw io.ReadWriter) error {
	r := bufio.NewReader(rw)
	readLine := func() (string, error) {
		line, err := r.ReadString('\n')
		return strings.TrimRight(line, "\r\n"), err
	}
	write := func(format string, args ...any) error {
		_, err := fmt.Fprintf(rw, format, args...)
		return err
	}

	if f.Password != "" {
		if err := write("\r\nUser Name:"); err != nil {
			return err
		}
		user, err := readLine()
		if err != nil {
			return err
		}
		if err := write("\r\nPassword:"); err != nil {
			return err
		}
		pass, err := readLine()
		if err != nil {
			return err
		}
		if user != f.Username || pass != f.Password {
			return write("\r\n%% Authentication failed\r\n")
		}
	}

	m := modeMain
	port := ""
	if err := write("\r\n%s", f.prompt(m)); err != nil {
		return err
	}

	for {
		line, err := readLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)

		f.mu.Lock()
		f.commands = append(f.commands, line)
		switch m {
		case modeMain:
			switch line {
			case "config", "configure terminal":
				m = modeConfig
			case "exit":
				f.mu.Unlock()
				return nil
			}
		case modeConfig:
			switch {
			case line == "vlan database":
				m = modeVLAN
			case vlanRe.MatchString(line):
				f.vlans[vlanRe.FindStringSubmatch(line)[1]] = true
				m = modeVLAN
			case interfaceRe.MatchString(line):
				port = interfaceRe.FindStringSubmatch(line)[1]
				m = modeInterface
			case line == "exit" || line == "end":
				m = modeMain
			}
		case modeVLAN:
			switch {
			case vlanRe.MatchString(line):
				f.vlans[vlanRe.FindStringSubmatch(line)[1]] = true
			case line == "exit":
				m = modeConfig
			case line == "end":
				m = modeMain
			}
		case modeInterface:
			switch {
			case accessRe.MatchString(line):
				f.access[port] = accessRe.FindStringSubmatch(line)[1]
			case line == "no switchport access vlan":
				delete(f.access, port)
			case line == "shutdown":
				f.shutdown[port] = true
			case line == "no shutdown":
				f.shutdown[port] = false
			case line == "exit":
				m = modeConfig
			case line == "end":
				m = modeMain
			}
		}
		hang := f.HangOn != "" && line == f.HangOn
		f.mu.Unlock()

		if hang {
			// Keep draining input without answering
			_, _ = io.Copy(io.Discard, r)
			return nil
		}
		if err := write("%s\r\n%s", line, f.prompt(m)); err != nil {
			return err
		}
	}
}
