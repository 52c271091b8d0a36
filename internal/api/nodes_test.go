package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/domain"
)

func TestNodeConnectNetwork_Reconciled(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))

	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1"))
	assert.Len(t, e.pending(t), 1)

	err := e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1")
	assert.ErrorIs(t, err, domain.ErrBlocked)
	assert.Len(t, e.pending(t), 1)

	didWork, err := newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.True(t, didWork)
	assert.Empty(t, e.pending(t))
	assert.Equal(t, "84", e.mock.PortNetwork("sw0", "p1"))

	details, err := e.api.NodeShow(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, details.Nics, 1)
	assert.Equal(t, map[string]string{domain.DefaultChannel: "net1"}, details.Nics[0].Networks)
	assert.False(t, details.Nics[0].Pending)

	// Already attached
	err = e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1")
	assert.ErrorIs(t, err, domain.ErrBlocked)

	didWork, err = newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.False(t, didWork)
}

func TestNodeConnectNetwork_Access(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.ProjectCreate(ctx, "other"))
	require.NoError(t, e.api.NetworkCreate(ctx, "theirs", "other", "other", ""))
	require.NoError(t, e.api.NetworkCreate(ctx, "public", AdminCreator, "", ""))

	err := e.api.NodeConnectNetwork(ctx, "n1", "eth0", "theirs")
	assert.ErrorIs(t, err, domain.ErrProjectMismatch)
	assert.Empty(t, e.pending(t))

	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "public"))
}

func TestNodeConnectNetwork_FreeNode(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "")
	require.NoError(t, e.api.NetworkCreate(ctx, "public", AdminCreator, "", ""))

	err := e.api.NodeConnectNetwork(ctx, "n1", "eth0", "public")
	assert.ErrorIs(t, err, domain.ErrProjectMismatch)

	err = e.api.NodeConnectNetwork(ctx, "n1", "eth9", "public")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNodeDetachNetwork(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))
	require.NoError(t, e.api.NetworkCreate(ctx, "net2", "acme", "acme", ""))

	err := e.api.NodeDetachNetwork(ctx, "n1", "eth0", "net1")
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1"))
	err = e.api.NodeDetachNetwork(ctx, "n1", "eth0", "net1")
	assert.ErrorIs(t, err, domain.ErrBlocked)

	_, err = newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)

	err = e.api.NodeDetachNetwork(ctx, "n1", "eth0", "net2")
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	require.NoError(t, e.api.NodeDetachNetwork(ctx, "n1", "eth0", "net1"))
	actions := e.pending(t)
	require.Len(t, actions, 1)
	assert.Nil(t, actions[0].NewNetworkID)

	didWork, err := newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.True(t, didWork)
	assert.Empty(t, e.mock.PortNetwork("sw0", "p1"))
}

func TestNodeDeleteNic(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))
	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1"))

	// A pending action goes with the nic
	require.NoError(t, e.api.NodeDeleteNic(ctx, "n1", "eth0"))
	assert.Empty(t, e.pending(t))

	// The port is free again
	require.NoError(t, e.api.NodeRegisterNic(ctx, "n1", "eth1", "de:ad:be:ef:00:02"))
	require.NoError(t, e.api.PortConnectNic(ctx, "sw0", "p1", "n1", "eth1"))

	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth1", "net1"))
	_, err := newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)

	err = e.api.NodeDeleteNic(ctx, "n1", "eth1")
	assert.ErrorIs(t, err, domain.ErrBlocked)

	assert.ErrorIs(t, e.api.NodeDeleteNic(ctx, "n1", "eth0"), domain.ErrNotFound)
}

func TestNodeRegisterNic_ScopedToNode(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	require.NoError(t, e.api.NodeRegister(ctx, "n1"))
	require.NoError(t, e.api.NodeRegister(ctx, "n2"))

	require.NoError(t, e.api.NodeRegisterNic(ctx, "n1", "eth0", "aa"))
	require.NoError(t, e.api.NodeRegisterNic(ctx, "n2", "eth0", "bb"))
	assert.ErrorIs(t, e.api.NodeRegisterNic(ctx, "n1", "eth0", "cc"), domain.ErrDuplicate)
	assert.ErrorIs(t, e.api.NodeRegister(ctx, "n1"), domain.ErrDuplicate)

	require.NoError(t, e.api.NodeDeleteNic(ctx, "n2", "eth0"))
	details, err := e.api.NodeShow(ctx, "n1")
	require.NoError(t, err)
	require.Len(t, details.Nics, 1)
	assert.Equal(t, "aa", details.Nics[0].MACAddr)
}

func TestNodeDelete(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")

	err := e.api.NodeDelete(ctx, "n1")
	assert.ErrorIs(t, err, domain.ErrBlocked)

	require.NoError(t, e.api.ProjectDetachNode(ctx, "acme", "n1"))
	require.NoError(t, e.api.NodeDelete(ctx, "n1"))

	_, err = e.api.NodeShow(ctx, "n1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The port binding went with the nic
	require.NoError(t, e.api.SwitchDeletePort(ctx, "sw0", "p1"))
}

func TestNodeShow(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NodeRegisterNic(ctx, "n1", "ipmi", "de:ad:be:ef:00:ff"))

	details, err := e.api.NodeShow(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", details.Name)
	require.NotNil(t, details.Project)
	assert.Equal(t, "acme", *details.Project)
	require.Len(t, details.Nics, 2)

	byLabel := map[string]NicDetails{}
	for _, n := range details.Nics {
		byLabel[n.Label] = n
	}
	assert.Equal(t, "sw0", byLabel["eth0"].Switch)
	assert.Equal(t, "p1", byLabel["eth0"].Port)
	assert.Empty(t, byLabel["ipmi"].Port)
	assert.Empty(t, byLabel["ipmi"].Networks)
}
