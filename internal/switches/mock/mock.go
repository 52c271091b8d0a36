// Package mock provides an in-process switch that records the port state it
// is asked to apply. Failures can be injected per switch.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/switches"
)

// Driver is the mock switch family. State survives across sessions and is
// keyed by switch label.
type Driver struct {
	mu          sync.Mutex
	ports       map[string]map[string]string
	connectErr  map[string]error
	applyErr    map[string]error
	connects    map[string]int
	disconnects map[string]int
}

// New creates a mock driver
func New() *Driver {
	return &Driver{
		ports:       make(map[string]map[string]string),
		connectErr:  make(map[string]error),
		applyErr:    make(map[string]error),
		connects:    make(map[string]int),
		disconnects: make(map[string]int),
	}
}

// Type returns domain.SwitchTypeMock
func (d *Driver) Type() domain.SwitchType {
	return domain.SwitchTypeMock
}

// ValidatePort accepts any non-empty name
func (d *Driver) ValidatePort(_ domain.SwitchConfig, port string) error {
	if port == "" {
		return fmt.Errorf("port name is required: %w", domain.ErrBadArgument)
	}
	return nil
}

// FailConnect makes every Connect to the switch fail with err; nil clears it
func (d *Driver) FailConnect(label string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setErr(d.connectErr, label, err)
}

// FailApply makes every Apply on the switch fail with err; nil clears it
func (d *Driver) FailApply(label string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.setErr(d.applyErr, label, err)
}

func (d *Driver) setErr(m map[string]error, label string, err error) {
	if err == nil {
		delete(m, label)
		return
	}
	m[label] = err
}

// PortNetwork returns the network identifier applied to a port, "" if detached
func (d *Driver) PortNetwork(label, port string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ports[label][port]
}

// Sessions returns how many sessions were opened and closed for the switch
func (d *Driver) Sessions(label string) (connects, disconnects int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connects[label], d.disconnects[label]
}

// Connect opens a recording session
func (d *Driver) Connect(ctx context.Context, sw domain.Switch) (switches.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.connectErr[sw.Label]; err != nil {
		return nil, fmt.Errorf("mock switch %q: %w", sw.Label, err)
	}
	d.connects[sw.Label]++
	log.G(ctx).WithField("switch", sw.Label).Debug("mock switch connected")
	return &session{driver: d, label: sw.Label}, nil
}

type session struct {
	driver *Driver
	label  string
	closed bool
}

func (s *session) Apply(ctx context.Context, changes map[string]string) error {
	d := s.driver
	d.mu.Lock()
	defer d.mu.Unlock()

	if s.closed {
		return fmt.Errorf("mock switch %q: session is closed: %w", s.label, domain.ErrServer)
	}
	if err := d.applyErr[s.label]; err != nil {
		return fmt.Errorf("mock switch %q: %w", s.label, err)
	}

	ports := d.ports[s.label]
	if ports == nil {
		ports = make(map[string]string)
		d.ports[s.label] = ports
	}
	for port, network := range changes {
		if network == "" {
			delete(ports, port)
		} else {
			ports[port] = network
		}
		log.G(ctx).WithFields(logrus.Fields{
			"switch":     s.label,
			"port":       port,
			"network_id": network,
		}).Debug("mock switch applied port")
	}
	return nil
}

func (s *session) Disconnect() error {
	s.driver.mu.Lock()
	defer s.driver.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.driver.disconnects[s.label]++
	return nil
}
