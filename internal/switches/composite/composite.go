// Package composite federates independently addressed switches that share a
// trunk under one switch label. Ports are named "<subswitch>::<local-port>".
package composite

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/switches"
)

// Separator joins a subswitch name and its local port name
const Separator = "::"

// Lookup resolves the driver of a subswitch family
type Lookup interface {
	Driver(t domain.SwitchType) (switches.Driver, error)
}

// Driver is the composite family
type Driver struct {
	lookup Lookup
}

// New creates a composite driver resolving members through lookup
func New(lookup Lookup) *Driver {
	return &Driver{lookup: lookup}
}

func (d *Driver) Type() domain.SwitchType {
	return domain.SwitchTypeComposite
}

// SplitPort splits a composite port name into subswitch and local port
func SplitPort(port string) (sub, local string, err error) {
	sub, local, ok := strings.Cut(port, Separator)
	if !ok || sub == "" || local == "" {
		return "", "", fmt.Errorf("invalid composite port %q, expected <subswitch>%s<port>: %w", port, Separator, domain.ErrBadArgument)
	}
	return sub, local, nil
}

func (d *Driver) member(cfg domain.SwitchConfig, name string) (domain.SwitchConfig, switches.Driver, error) {
	if cfg.Composite == nil {
		return domain.SwitchConfig{}, nil, fmt.Errorf("switch has no composite config: %w", domain.ErrBadArgument)
	}
	sub, ok := cfg.Composite.Subswitches[name]
	if !ok {
		return domain.SwitchConfig{}, nil, fmt.Errorf("unknown subswitch %q: %w", name, domain.ErrBadArgument)
	}
	t, err := sub.Type()
	if err != nil {
		return domain.SwitchConfig{}, nil, err
	}
	driver, err := d.lookup.Driver(t)
	if err != nil {
		return domain.SwitchConfig{}, nil, err
	}
	return sub, driver, nil
}

// ValidatePort checks the subswitch exists and its family accepts the local port
func (d *Driver) ValidatePort(cfg domain.SwitchConfig, port string) error {
	name, local, err := SplitPort(port)
	if err != nil {
		return err
	}
	sub, driver, err := d.member(cfg, name)
	if err != nil {
		return err
	}
	return driver.ValidatePort(sub, local)
}

// Connect returns a session that opens member sessions on first use
func (d *Driver) Connect(_ context.Context, sw domain.Switch) (switches.Session, error) {
	if sw.Config.Composite == nil {
		return nil, fmt.Errorf("switch %q has no composite config: %w", sw.Label, domain.ErrBadArgument)
	}
	return &session{
		driver:  d,
		sw:      sw,
		members: make(map[string]switches.Session),
	}, nil
}

type session struct {
	driver  *Driver
	sw      domain.Switch
	members map[string]switches.Session
	order   []string
}

func (s *session) open(ctx context.Context, name string) (switches.Session, error) {
	if sess, ok := s.members[name]; ok {
		return sess, nil
	}
	cfg, driver, err := s.driver.member(s.sw.Config, name)
	if err != nil {
		return nil, err
	}
	member := domain.Switch{
		ID:     s.sw.ID,
		Label:  s.sw.Label + Separator + name,
		Type:   driver.Type(),
		Config: cfg,
	}
	sess, err := driver.Connect(ctx, member)
	if err != nil {
		return nil, err
	}
	s.members[name] = sess
	s.order = append(s.order, name)
	return sess, nil
}

// Apply splits the changes by subswitch and applies each group in name order
func (s *session) Apply(ctx context.Context, changes map[string]string) error {
	groups := make(map[string]map[string]string)
	for port, network := range changes {
		name, local, err := SplitPort(port)
		if err != nil {
			return err
		}
		if groups[name] == nil {
			groups[name] = make(map[string]string)
		}
		groups[name][local] = network
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sess, err := s.open(ctx, name)
		if err != nil {
			return fmt.Errorf("subswitch %q: %w", name, err)
		}
		if err := sess.Apply(ctx, groups[name]); err != nil {
			return fmt.Errorf("subswitch %q: %w", name, err)
		}
	}
	return nil
}

// Disconnect closes every member session that was opened
func (s *session) Disconnect() error {
	var result *multierror.Error
	for _, name := range s.order {
		if err := s.members[name].Disconnect(); err != nil {
			result = multierror.Append(result, fmt.Errorf("subswitch %q: %w", name, err))
		}
	}
	s.members = make(map[string]switches.Session)
	s.order = nil
	return result.ErrorOrNil()
}
