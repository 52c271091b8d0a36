// Package dell drives Dell PowerConnect switches over telnet.
package dell

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/switches"
	"github.com/jbweber/homelab/hil/internal/switches/expect"
)

// DefaultPort is the telnet port
const DefaultPort = 23

var portRe = regexp.MustCompile(`^(gi|te)\d+/\d+/\d+$`)

// DialFunc opens the raw connection to a switch
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Driver is the Dell PowerConnect family
type Driver struct {
	Dial    DialFunc
	Timeout time.Duration
}

// New creates a driver dialing over TCP
func New() *Driver {
	d := &net.Dialer{Timeout: 10 * time.Second}
	return &Driver{Dial: d.DialContext, Timeout: expect.DefaultTimeout}
}

func (d *Driver) Type() domain.SwitchType {
	return domain.SwitchTypeDell
}

// ValidatePort accepts names like gi1/0/5 and te1/0/1
func (d *Driver) ValidatePort(_ domain.SwitchConfig, port string) error {
	if !portRe.MatchString(port) {
		return fmt.Errorf("invalid dell port %q, expected gi|te<unit>/<slot>/<port>: %w", port, domain.ErrBadArgument)
	}
	return nil
}

// Connect logs in and enters configuration mode
func (d *Driver) Connect(ctx context.Context, sw domain.Switch) (switches.Session, error) {
	cfg := sw.Config.Dell
	if cfg == nil {
		return nil, fmt.Errorf("switch %q has no dell config: %w", sw.Label, domain.ErrBadArgument)
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	conn, err := d.Dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %v: %w", addr, err, domain.ErrServer)
	}

	console := expect.NewSession(expect.NewTelnetConn(conn), expect.WithTimeout(d.Timeout), expect.WithNewline("\r\n"))
	s := &session{
		console: console,
		label:   sw.Label,
		vlans:   make(map[string]bool),
	}
	if err := s.login(ctx, cfg.Username, cfg.Password); err != nil {
		console.Close()
		return nil, fmt.Errorf("dell switch %q: %w", sw.Label, err)
	}
	log.G(ctx).WithField("switch", sw.Label).Debug("dell switch connected")
	return s, nil
}

type session struct {
	console *expect.Session
	label   string
	vlans   map[string]bool // created during this session
}

func (s *session) login(ctx context.Context, user, pass string) error {
	if _, err := s.console.Expect(ctx, expect.Login); err != nil {
		return err
	}
	if _, err := s.console.Run(ctx, user, expect.Password); err != nil {
		return err
	}
	if _, err := s.console.Run(ctx, pass, expect.Main); err != nil {
		return err
	}
	_, err := s.console.Run(ctx, "config", expect.Config)
	return err
}

// Apply sets or clears the access vlan of each port
func (s *session) Apply(ctx context.Context, changes map[string]string) error {
	ports := make([]string, 0, len(changes))
	for port := range changes {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	for _, port := range ports {
		vlan := changes[port]
		if vlan != "" {
			if err := s.ensureVLAN(ctx, vlan); err != nil {
				return fmt.Errorf("dell switch %q: %w", s.label, err)
			}
		}
		if err := s.setAccess(ctx, port, vlan); err != nil {
			return fmt.Errorf("dell switch %q port %s: %w", s.label, port, err)
		}
	}
	return nil
}

func (s *session) ensureVLAN(ctx context.Context, vlan string) error {
	if s.vlans[vlan] {
		return nil
	}
	if _, err := s.console.Run(ctx, "vlan database", expect.VLAN); err != nil {
		return err
	}
	if _, err := s.console.Run(ctx, "vlan "+vlan, expect.VLAN); err != nil {
		return err
	}
	if _, err := s.console.Run(ctx, "exit", expect.Config); err != nil {
		return err
	}
	s.vlans[vlan] = true
	return nil
}

func (s *session) setAccess(ctx context.Context, port, vlan string) error {
	if _, err := s.console.Run(ctx, "interface "+port, expect.Interface); err != nil {
		return err
	}
	cmd := "no switchport access vlan"
	if vlan != "" {
		cmd = "switchport access vlan " + vlan
	}
	if _, err := s.console.Run(ctx, cmd, expect.Interface); err != nil {
		return err
	}
	_, err := s.console.Run(ctx, "exit", expect.Config)
	return err
}

// Disconnect leaves configuration mode and logs out
func (s *session) Disconnect() error {
	defer s.console.Close()
	ctx := context.Background()
	if s.console.State() == expect.Config.Name {
		if _, err := s.console.Run(ctx, "exit", expect.Main); err != nil {
			return err
		}
	}
	return s.console.Send("exit")
}
