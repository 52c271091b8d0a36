// Package switches defines the protocol every switch driver family speaks
// and the registry of families enabled in this deployment.
package switches

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
)

// Driver is one switch family
type Driver interface {
	// Type returns the family this driver handles
	Type() domain.SwitchType

	// Connect opens a session to the switch
	Connect(ctx context.Context, sw domain.Switch) (Session, error)

	// ValidatePort checks a port name against the family's naming scheme
	ValidatePort(cfg domain.SwitchConfig, port string) error
}

// Session is an open connection to one switch
type Session interface {
	// Apply reconfigures the given ports. Keys are port labels, values are
	// network identifiers; an empty identifier detaches the port.
	Apply(ctx context.Context, changes map[string]string) error

	// Disconnect releases the session
	Disconnect() error
}

// Registry holds the drivers enabled in this deployment
type Registry struct {
	mu      sync.RWMutex
	drivers map[domain.SwitchType]Driver
}

// NewRegistry creates a registry holding drivers
func NewRegistry(drivers ...Driver) *Registry {
	r := &Registry{drivers: make(map[domain.SwitchType]Driver)}
	for _, d := range drivers {
		r.Register(d)
	}
	return r
}

// Register enables a driver, replacing any driver for the same family
func (r *Registry) Register(d Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[d.Type()] = d
}

// Driver returns the driver for a family. Returns domain.ErrBadArgument if
// the family is not enabled.
func (r *Registry) Driver(t domain.SwitchType) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[t]
	if !ok {
		return nil, fmt.Errorf("switch family %q is not enabled: %w", t, domain.ErrBadArgument)
	}
	return d, nil
}

// Types lists the enabled families
func (r *Registry) Types() []domain.SwitchType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]domain.SwitchType, 0, len(r.drivers))
	for t := range r.drivers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ValidateConfig checks that cfg is well formed and that every family it
// names, including composite members, is enabled.
func (r *Registry) ValidateConfig(cfg domain.SwitchConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	t, err := cfg.Type()
	if err != nil {
		return err
	}
	if _, err := r.Driver(t); err != nil {
		return err
	}
	if cfg.Composite != nil {
		for name, sub := range cfg.Composite.Subswitches {
			if err := r.ValidateConfig(sub); err != nil {
				return fmt.Errorf("subswitch %q: %w", name, err)
			}
		}
	}
	return nil
}

// ValidatePort checks a port name for the switch
func (r *Registry) ValidatePort(sw domain.Switch, port string) error {
	d, err := r.Driver(sw.Type)
	if err != nil {
		return err
	}
	return d.ValidatePort(sw.Config, port)
}

// Connect opens a session with the switch's driver
func (r *Registry) Connect(ctx context.Context, sw domain.Switch) (Session, error) {
	d, err := r.Driver(sw.Type)
	if err != nil {
		return nil, err
	}
	return d.Connect(ctx, sw)
}

// WithSession connects to sw, runs fn and disconnects exactly once. A failed
// disconnect is logged; the changes fn made are already on the switch.
func WithSession(ctx context.Context, r *Registry, sw domain.Switch, fn func(Session) error) error {
	logger := log.G(ctx).WithField("switch", sw.Label)

	sess, err := r.Connect(ctx, sw)
	if err != nil {
		return fmt.Errorf("failed to connect to switch %q: %w", sw.Label, err)
	}
	defer func() {
		if err := sess.Disconnect(); err != nil {
			logger.WithError(err).Warn("failed to disconnect from switch")
		}
	}()

	logger.Debug("switch session opened")
	return fn(sess)
}
