package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/domain"
)

func TestSwitchRepository_Save(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	sw := domain.Switch{
		Label: "dell-01",
		Config: domain.SwitchConfig{Dell: &domain.DellConfig{
			Host:     "10.0.0.2",
			Username: "admin",
			Password: "secret",
		}},
	}

	saved, err := r.Switches.Save(ctx, sw)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, domain.SwitchTypeDell, saved.Type)

	found, err := r.Switches.FindByLabel(ctx, "dell-01")
	require.NoError(t, err)
	assert.Equal(t, domain.SwitchTypeDell, found.Type)
	require.NotNil(t, found.Config.Dell)
	assert.Equal(t, "10.0.0.2", found.Config.Dell.Host)

	_, err = r.Switches.Save(ctx, sw)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Type must agree with the config variant
	_, err = r.Switches.Save(ctx, domain.Switch{
		Label:  "bad",
		Type:   domain.SwitchTypeNexus,
		Config: domain.SwitchConfig{Mock: &domain.MockConfig{}},
	})
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	_, err = r.Switches.Save(ctx, domain.Switch{Label: "empty"})
	assert.ErrorIs(t, err, domain.ErrBadArgument)
}

func TestSwitchRepository_Composite(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	saved, err := r.Switches.Save(ctx, domain.Switch{
		Label: "stack",
		Config: domain.SwitchConfig{Composite: &domain.CompositeConfig{
			Subswitches: map[string]domain.SwitchConfig{
				"a": {Mock: &domain.MockConfig{}},
				"b": {Null: &domain.NullConfig{}},
			},
		}},
	})
	require.NoError(t, err)

	found, err := r.Switches.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Config.Composite)
	assert.Len(t, found.Config.Composite.Subswitches, 2)
	assert.NotNil(t, found.Config.Composite.Subswitches["b"].Null)
}

func TestPortRepository_Save(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	sw1, err := r.Switches.Save(ctx, domain.Switch{Label: "sw1", Config: domain.SwitchConfig{Mock: &domain.MockConfig{}}})
	require.NoError(t, err)
	sw2, err := r.Switches.Save(ctx, domain.Switch{Label: "sw2", Config: domain.SwitchConfig{Mock: &domain.MockConfig{}}})
	require.NoError(t, err)

	p, err := r.Ports.Save(ctx, domain.Port{SwitchID: sw1.ID, Label: "1/1"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	// Same label on another switch is fine
	_, err = r.Ports.Save(ctx, domain.Port{SwitchID: sw2.ID, Label: "1/1"})
	require.NoError(t, err)

	_, err = r.Ports.Save(ctx, domain.Port{SwitchID: sw1.ID, Label: "1/1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = r.Ports.Save(ctx, p)
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	found, err := r.Ports.FindBySwitchAndLabel(ctx, sw1.ID, "1/1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	ports, err := r.Ports.FindBySwitch(ctx, sw2.ID)
	require.NoError(t, err)
	assert.Len(t, ports, 1)
}
