// Package nexus drives Cisco Nexus switches over SSH.
package nexus

import (
	"context"
	"fmt"
	"io"
	"net"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/switches"
	"github.com/jbweber/homelab/hil/internal/switches/expect"
)

// DefaultPort is the SSH port
const DefaultPort = 22

var portRe = regexp.MustCompile(`^\d+/\d+(/\d+)?$`)

// DialFunc opens the raw connection to a switch
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Driver is the Cisco Nexus family
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
	return domain.SwitchTypeNexus
}

// ValidatePort accepts ethernet names like 1/5 or 1/1/2
func (d *Driver) ValidatePort(_ domain.SwitchConfig, port string) error {
	if !portRe.MatchString(port) {
		return fmt.Errorf("invalid nexus port %q, expected <slot>/<port>: %w", port, domain.ErrBadArgument)
	}
	return nil
}

func hostKeyCallback(cfg *domain.NexusConfig) (ssh.HostKeyCallback, error) {
	if cfg.KnownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(cfg.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts: %v: %w", err, domain.ErrServer)
	}
	return cb, nil
}

// Connect opens an interactive shell and enters configuration mode
func (d *Driver) Connect(ctx context.Context, sw domain.Switch) (switches.Session, error) {
	cfg := sw.Config.Nexus
	if cfg == nil {
		return nil, fmt.Errorf("switch %q has no nexus config: %w", sw.Label, domain.ErrBadArgument)
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	hostKeys, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := d.Dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %v: %w", addr, err, domain.ErrServer)
	}

	shell, err := d.handshake(ctx, conn, addr, &ssh.ClientConfig{
		User: cfg.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(cfg.Password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = cfg.Password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: hostKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("nexus switch %q: %v: %w", sw.Label, err, domain.ErrServer)
	}

	s := &session{
		console: expect.NewSession(shell, expect.WithTimeout(d.Timeout)),
		label:   sw.Label,
		dummy:   cfg.DummyVLAN,
	}
	if err := s.enterConfig(ctx); err != nil {
		s.console.Close()
		return nil, fmt.Errorf("nexus switch %q: %w", sw.Label, err)
	}
	log.G(ctx).WithField("switch", sw.Label).Debug("nexus switch connected")
	return s, nil
}

// shell is an interactive SSH shell as a byte stream
type shell struct {
	io.Reader
	io.WriteCloser
	session *ssh.Session
	client  *ssh.Client
}

// handshake opens the shell on conn within the driver timeout. conn is closed
// on failure or when ctx is done first.
func (d *Driver) handshake(ctx context.Context, conn net.Conn, addr string, cfg *ssh.ClientConfig) (*shell, error) {
	if d.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(d.Timeout)); err != nil {
			conn.Close()
			return nil, err
		}
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })

	sh, err := openShell(conn, addr, cfg)
	if !stop() {
		if sh != nil {
			sh.Close()
		}
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, ctx.Err())
	}
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		sh.Close()
		return nil, err
	}
	return sh, nil
}

func openShell(conn net.Conn, addr string, cfg *ssh.ClientConfig) (*shell, error) {
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		return nil, err
	}
	client := ssh.NewClient(c, chans, reqs)

	sess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, err
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		client.Close()
		return nil, err
	}
	stdout, err := sess.StdoutPipe()
	if err != nil {
		client.Close()
		return nil, err
	}
	modes := ssh.TerminalModes{ssh.ECHO: 0}
	if err := sess.RequestPty("vt100", 0, 511, modes); err != nil {
		client.Close()
		return nil, err
	}
	if err := sess.Shell(); err != nil {
		client.Close()
		return nil, err
	}
	return &shell{Reader: stdout, WriteCloser: stdin, session: sess, client: client}, nil
}

func (s *shell) Close() error {
	var result *multierror.Error
	if err := s.WriteCloser.Close(); err != nil && err != io.EOF {
		result = multierror.Append(result, err)
	}
	if err := s.session.Close(); err != nil && err != io.EOF {
		result = multierror.Append(result, err)
	}
	if err := s.client.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

type session struct {
	console *expect.Session
	label   string
	dummy   string
}

func (s *session) enterConfig(ctx context.Context) error {
	if _, err := s.console.Expect(ctx, expect.Main); err != nil {
		return err
	}
	_, err := s.console.Run(ctx, "configure terminal", expect.Config)
	return err
}

// Apply puts each port in access mode on its vlan. Detached ports are parked
// on the dummy vlan and shut down.
func (s *session) Apply(ctx context.Context, changes map[string]string) error {
	ports := make([]string, 0, len(changes))
	for port := range changes {
		ports = append(ports, port)
	}
	sort.Strings(ports)

	for _, port := range ports {
		var err error
		if vlan := changes[port]; vlan != "" {
			err = s.attach(ctx, port, vlan)
		} else {
			err = s.detach(ctx, port)
		}
		if err != nil {
			return fmt.Errorf("nexus switch %q port %s: %w", s.label, port, err)
		}
	}
	return nil
}

func (s *session) run(ctx context.Context, steps []string, state expect.State) error {
	for _, cmd := range steps {
		if _, err := s.console.Run(ctx, cmd, state); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) attach(ctx context.Context, port, vlan string) error {
	if _, err := s.console.Run(ctx, "vlan "+vlan, expect.VLAN); err != nil {
		return err
	}
	if _, err := s.console.Run(ctx, "exit", expect.Config); err != nil {
		return err
	}
	if _, err := s.console.Run(ctx, "interface ethernet "+port, expect.Interface); err != nil {
		return err
	}
	if err := s.run(ctx, []string{
		"switchport",
		"switchport mode access",
		"switchport access vlan " + vlan,
		"no shutdown",
	}, expect.Interface); err != nil {
		return err
	}
	_, err := s.console.Run(ctx, "exit", expect.Config)
	return err
}

func (s *session) detach(ctx context.Context, port string) error {
	if _, err := s.console.Run(ctx, "interface ethernet "+port, expect.Interface); err != nil {
		return err
	}
	if err := s.run(ctx, []string{
		"switchport",
		"switchport mode access",
		"switchport access vlan " + s.dummy,
		"shutdown",
	}, expect.Interface); err != nil {
		return err
	}
	_, err := s.console.Run(ctx, "exit", expect.Config)
	return err
}

// Disconnect leaves configuration mode and closes the shell
func (s *session) Disconnect() error {
	defer s.console.Close()
	if s.console.State() == expect.Config.Name {
		if _, err := s.console.Run(context.Background(), "end", expect.Main); err != nil {
			return err
		}
	}
	return s.console.Send("exit")
}
