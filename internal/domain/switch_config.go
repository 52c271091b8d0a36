package domain

import (
	"encoding/json"
	"fmt"
)

// SwitchType names a switch driver family
type SwitchType string

const (
	SwitchTypeMock      SwitchType = "mock"
	SwitchTypeNull      SwitchType = "null"
	SwitchTypeDell      SwitchType = "dell"
	SwitchTypeNexus     SwitchType = "nexus"
	SwitchTypeComposite SwitchType = "composite"
)

// SwitchConfig is a tagged union over the supported driver families. Exactly
// one variant must be set.
type SwitchConfig struct {
	Mock      *MockConfig      `json:"mock,omitempty"`
	Null      *NullConfig      `json:"null,omitempty"`
	Dell      *DellConfig      `json:"dell,omitempty"`
	Nexus     *NexusConfig     `json:"nexus,omitempty"`
	Composite *CompositeConfig `json:"composite,omitempty"`
}

// MockConfig configures an in-process recording switch
type MockConfig struct{}

// NullConfig configures a switch that discards everything
type NullConfig struct{}

// DellConfig holds the telnet credentials of a Dell PowerConnect switch
type DellConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"` // defaults to 23
	Username string `json:"username"`
	Password string `json:"password"`
}

// NexusConfig holds the SSH credentials of a Cisco Nexus switch. Detached
// ports are parked on DummyVLAN.
type NexusConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port,omitempty"` // defaults to 22
	Username       string `json:"username"`
	Password       string `json:"password"`
	DummyVLAN      string `json:"dummy_vlan"`
	KnownHostsFile string `json:"known_hosts_file,omitempty"`
}

// CompositeConfig federates independently addressed switches under one label.
// Ports are named "<subswitch>::<local-port>".
type CompositeConfig struct {
	Subswitches map[string]SwitchConfig `json:"subswitches"`
}

// Type reports which variant is set.
func (c SwitchConfig) Type() (SwitchType, error) {
	var set []SwitchType
	if c.Mock != nil {
		set = append(set, SwitchTypeMock)
	}
	if c.Null != nil {
		set = append(set, SwitchTypeNull)
	}
	if c.Dell != nil {
		set = append(set, SwitchTypeDell)
	}
	if c.Nexus != nil {
		set = append(set, SwitchTypeNexus)
	}
	if c.Composite != nil {
		set = append(set, SwitchTypeComposite)
	}
	if len(set) != 1 {
		return "", fmt.Errorf("switch config must set exactly one driver family, got %d: %w", len(set), ErrBadArgument)
	}
	return set[0], nil
}

// Validate checks the variant's required fields.
func (c SwitchConfig) Validate() error {
	t, err := c.Type()
	if err != nil {
		return err
	}
	switch t {
	case SwitchTypeDell:
		if c.Dell.Host == "" || c.Dell.Username == "" {
			return fmt.Errorf("dell switch requires host and username: %w", ErrBadArgument)
		}
	case SwitchTypeNexus:
		if c.Nexus.Host == "" || c.Nexus.Username == "" {
			return fmt.Errorf("nexus switch requires host and username: %w", ErrBadArgument)
		}
		if c.Nexus.DummyVLAN == "" {
			return fmt.Errorf("nexus switch requires dummy_vlan: %w", ErrBadArgument)
		}
	case SwitchTypeComposite:
		if len(c.Composite.Subswitches) == 0 {
			return fmt.Errorf("composite switch requires at least one subswitch: %w", ErrBadArgument)
		}
		for name, sub := range c.Composite.Subswitches {
			if name == "" {
				return fmt.Errorf("composite subswitch name is required: %w", ErrBadArgument)
			}
			if sub.Composite != nil {
				return fmt.Errorf("composite subswitch %s cannot itself be composite: %w", name, ErrBadArgument)
			}
			if err := sub.Validate(); err != nil {
				return fmt.Errorf("subswitch %s: %w", name, err)
			}
		}
	}
	return nil
}

// MarshalConfig encodes the union for storage.
func MarshalConfig(c SwitchConfig) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalConfig decodes a stored union.
func UnmarshalConfig(s string) (SwitchConfig, error) {
	var c SwitchConfig
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return SwitchConfig{}, fmt.Errorf("invalid switch config: %w", err)
	}
	return c, nil
}
