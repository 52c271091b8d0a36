// Package builtin builds a switch registry from the family names enabled in
// configuration.
package builtin

import (
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/switches"
	"github.com/jbweber/homelab/hil/internal/switches/composite"
	"github.com/jbweber/homelab/hil/internal/switches/dell"
	"github.com/jbweber/homelab/hil/internal/switches/mock"
	"github.com/jbweber/homelab/hil/internal/switches/nexus"
	"github.com/jbweber/homelab/hil/internal/switches/null"
)

// Families lists every family this build can drive
var Families = []domain.SwitchType{
	domain.SwitchTypeMock,
	domain.SwitchTypeNull,
	domain.SwitchTypeDell,
	domain.SwitchTypeNexus,
	domain.SwitchTypeComposite,
}

// IsKnown reports whether name is a family this build can drive
func IsKnown(name string) bool {
	for _, f := range Families {
		if string(f) == name {
			return true
		}
	}
	return false
}

// NewRegistry enables the named families
func NewRegistry(names []string) (*switches.Registry, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no switch families enabled: %w", domain.ErrBadArgument)
	}

	r := switches.NewRegistry()
	for _, name := range names {
		switch domain.SwitchType(name) {
		case domain.SwitchTypeMock:
			r.Register(mock.New())
		case domain.SwitchTypeNull:
			r.Register(null.New())
		case domain.SwitchTypeDell:
			r.Register(dell.New())
		case domain.SwitchTypeNexus:
			r.Register(nexus.New())
		case domain.SwitchTypeComposite:
			r.Register(composite.New(r))
		default:
			return nil, fmt.Errorf("unknown switch family %q: %w", name, domain.ErrBadArgument)
		}
	}
	return r, nil
}
