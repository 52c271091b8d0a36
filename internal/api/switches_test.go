package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/domain"
)

func TestSwitchRegister(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()

	require.NoError(t, e.api.SwitchRegister(ctx, "sw0", domain.SwitchConfig{Mock: &domain.MockConfig{}}))
	assert.ErrorIs(t, e.api.SwitchRegister(ctx, "sw0", domain.SwitchConfig{Null: &domain.NullConfig{}}), domain.ErrDuplicate)

	// No family set
	err := e.api.SwitchRegister(ctx, "sw1", domain.SwitchConfig{})
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	// Family not enabled in this registry
	err = e.api.SwitchRegister(ctx, "sw1", domain.SwitchConfig{Dell: &domain.DellConfig{Host: "10.0.0.2", Username: "admin"}})
	assert.ErrorIs(t, err, domain.ErrBadArgument)
}

func TestSwitchPorts(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	require.NoError(t, e.api.SwitchRegister(ctx, "sw0", domain.SwitchConfig{Mock: &domain.MockConfig{}}))

	require.NoError(t, e.api.SwitchRegisterPort(ctx, "sw0", "gi1/0/1"))
	assert.ErrorIs(t, e.api.SwitchRegisterPort(ctx, "sw0", "gi1/0/1"), domain.ErrDuplicate)
	assert.ErrorIs(t, e.api.SwitchRegisterPort(ctx, "sw0", ""), domain.ErrBadArgument)
	assert.ErrorIs(t, e.api.SwitchRegisterPort(ctx, "nope", "gi1/0/1"), domain.ErrNotFound)

	assert.ErrorIs(t, e.api.SwitchDelete(ctx, "sw0"), domain.ErrBlocked)
	require.NoError(t, e.api.SwitchDeletePort(ctx, "sw0", "gi1/0/1"))
	require.NoError(t, e.api.SwitchDelete(ctx, "sw0"))
}

func TestPortConnectNic(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.SwitchRegisterPort(ctx, "sw0", "p2"))
	require.NoError(t, e.api.NodeRegisterNic(ctx, "n1", "eth1", "de:ad:be:ef:00:02"))

	// Port already bound
	err := e.api.PortConnectNic(ctx, "sw0", "p1", "n1", "eth1")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Nic already bound
	err = e.api.PortConnectNic(ctx, "sw0", "p2", "n1", "eth0")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	assert.ErrorIs(t, e.api.SwitchDeletePort(ctx, "sw0", "p1"), domain.ErrBlocked)

	require.NoError(t, e.api.PortConnectNic(ctx, "sw0", "p2", "n1", "eth1"))
	require.NoError(t, e.api.PortDetachNic(ctx, "sw0", "p2"))
	assert.ErrorIs(t, e.api.PortDetachNic(ctx, "sw0", "p2"), domain.ErrNotFound)
}

func TestPortDetachNic_Busy(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))
	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1"))

	assert.ErrorIs(t, e.api.PortDetachNic(ctx, "sw0", "p1"), domain.ErrBlocked)

	_, err := newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, e.api.PortDetachNic(ctx, "sw0", "p1"), domain.ErrBlocked)

	require.NoError(t, e.api.NodeDetachNetwork(ctx, "n1", "eth0", "net1"))
	_, err = newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	require.NoError(t, e.api.PortDetachNic(ctx, "sw0", "p1"))
}
