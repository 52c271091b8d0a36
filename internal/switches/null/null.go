// Package null provides a switch family that accepts and discards every
// change, for nodes wired to unmanaged switches.
package null

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/switches"
)

// Driver is the null switch family
type Driver struct{}

// New creates a null driver
func New() Driver {
	return Driver{}
}

func (Driver) Type() domain.SwitchType {
	return domain.SwitchTypeNull
}

func (Driver) ValidatePort(_ domain.SwitchConfig, port string) error {
	if port == "" {
		return fmt.Errorf("port name is required: %w", domain.ErrBadArgument)
	}
	return nil
}

func (Driver) Connect(context.Context, domain.Switch) (switches.Session, error) {
	return session{}, nil
}

type session struct{}

func (session) Apply(context.Context, map[string]string) error {
	return nil
}

func (session) Disconnect() error {
	return nil
}
