package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchConfig_Type(t *testing.T) {
	typ, err := SwitchConfig{Dell: &DellConfig{Host: "10.0.0.1", Username: "admin"}}.Type()
	require.NoError(t, err)
	assert.Equal(t, SwitchTypeDell, typ)

	_, err = SwitchConfig{}.Type()
	assert.True(t, errors.Is(err, ErrBadArgument))

	_, err = SwitchConfig{Mock: &MockConfig{}, Null: &NullConfig{}}.Type()
	assert.True(t, errors.Is(err, ErrBadArgument))
}

func TestSwitchConfig_Validate(t *testing.T) {
	cases := []struct {
		name  string
		cfg   SwitchConfig
		valid bool
	}{
		{"mock", SwitchConfig{Mock: &MockConfig{}}, true},
		{"dell missing host", SwitchConfig{Dell: &DellConfig{Username: "admin"}}, false},
		{"nexus missing dummy vlan", SwitchConfig{Nexus: &NexusConfig{Host: "h", Username: "u"}}, false},
		{"nexus", SwitchConfig{Nexus: &NexusConfig{Host: "h", Username: "u", DummyVLAN: "1"}}, true},
		{"empty composite", SwitchConfig{Composite: &CompositeConfig{}}, false},
		{"nested composite", SwitchConfig{Composite: &CompositeConfig{Subswitches: map[string]SwitchConfig{
			"a": {Composite: &CompositeConfig{Subswitches: map[string]SwitchConfig{"b": {Mock: &MockConfig{}}}}},
		}}}, false},
		{"composite", SwitchConfig{Composite: &CompositeConfig{Subswitches: map[string]SwitchConfig{
			"a": {Mock: &MockConfig{}},
			"b": {Dell: &DellConfig{Host: "h", Username: "u"}},
		}}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrBadArgument), "got %v", err)
			}
		})
	}
}

func TestSwitchConfig_StoredForm(t *testing.T) {
	cfg := SwitchConfig{Composite: &CompositeConfig{Subswitches: map[string]SwitchConfig{
		"left": {Nexus: &NexusConfig{Host: "10.0.0.2", Username: "admin", Password: "secret", DummyVLAN: "2"}},
	}}}

	stored, err := MarshalConfig(cfg)
	require.NoError(t, err)

	decoded, err := UnmarshalConfig(stored)
	require.NoError(t, err)
	typ, err := decoded.Type()
	require.NoError(t, err)
	assert.Equal(t, SwitchTypeComposite, typ)
	assert.Equal(t, "2", decoded.Composite.Subswitches["left"].Nexus.DummyVLAN)

	_, err = UnmarshalConfig("{not json")
	assert.Error(t, err)
}
