package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/domain"
)

func TestNetworkCreate_ProjectNetwork(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	require.NoError(t, e.api.ProjectCreate(ctx, "acme"))

	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))

	details, err := e.api.NetworkShow(ctx, "net1")
	require.NoError(t, err)
	assert.True(t, details.Allocated)
	assert.Equal(t, "84", details.NetworkID)
	assert.Equal(t, "acme", details.Creator)
	require.NotNil(t, details.Access)
	assert.Equal(t, "acme", *details.Access)

	err = e.api.NetworkCreate(ctx, "net2", "acme", "other", "")
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	err = e.api.NetworkCreate(ctx, "net2", "acme", "", "")
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	err = e.api.NetworkCreate(ctx, "net2", "acme", "acme", "300")
	assert.ErrorIs(t, err, domain.ErrBadArgument)

	err = e.api.NetworkCreate(ctx, "net1", "acme", "acme", "")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	err = e.api.NetworkCreate(ctx, "net2", "ghost", "ghost", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNetworkCreate_AdminNetwork(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	require.NoError(t, e.api.ProjectCreate(ctx, "acme"))

	require.NoError(t, e.api.NetworkCreate(ctx, "public", AdminCreator, "", "84"))
	details, err := e.api.NetworkShow(ctx, "public")
	require.NoError(t, err)
	assert.False(t, details.Allocated)
	assert.Equal(t, "84", details.NetworkID)
	assert.Equal(t, AdminCreator, details.Creator)
	assert.Nil(t, details.Access)

	// The pool skips identifiers already in use
	require.NoError(t, e.api.NetworkCreate(ctx, "granted", AdminCreator, "acme", ""))
	details, err = e.api.NetworkShow(ctx, "granted")
	require.NoError(t, err)
	assert.True(t, details.Allocated)
	assert.Equal(t, "85", details.NetworkID)

	err = e.api.NetworkCreate(ctx, "again", AdminCreator, "", "84")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	networks, err := e.api.ListProjectNetworks(ctx, "acme")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"public", "granted"}, networks)
}

func TestNetworkCreate_Exhausted(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()

	require.NoError(t, e.api.NetworkCreate(ctx, "a", AdminCreator, "", ""))
	require.NoError(t, e.api.NetworkCreate(ctx, "b", AdminCreator, "", ""))

	err := e.api.NetworkCreate(ctx, "c", AdminCreator, "", "")
	assert.ErrorIs(t, err, domain.ErrAllocationExhausted)

	_, err = e.api.NetworkShow(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNetworkDelete_FreesIdentifier(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()

	require.NoError(t, e.api.NetworkCreate(ctx, "a", AdminCreator, "", ""))
	require.NoError(t, e.api.NetworkCreate(ctx, "b", AdminCreator, "", ""))
	require.NoError(t, e.api.NetworkDelete(ctx, "a"))

	require.NoError(t, e.api.NetworkCreate(ctx, "c", AdminCreator, "", ""))
	details, err := e.api.NetworkShow(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "84", details.NetworkID)

	assert.ErrorIs(t, e.api.NetworkDelete(ctx, "a"), domain.ErrNotFound)
}

func TestNetworkDelete_Blocked(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))

	// Pending action
	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1"))
	assert.ErrorIs(t, e.api.NetworkDelete(ctx, "net1"), domain.ErrBlocked)

	// Applied attachment
	_, err := newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, e.api.NetworkDelete(ctx, "net1"), domain.ErrBlocked)

	// Connected hnic
	require.NoError(t, e.api.NodeDetachNetwork(ctx, "n1", "eth0", "net1"))
	_, err = newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	require.NoError(t, e.api.HeadnodeCreate(ctx, "hn", "acme", "centos"))
	require.NoError(t, e.api.HeadnodeCreateHnic(ctx, "hn", "hnic0"))
	require.NoError(t, e.api.HeadnodeConnectNetwork(ctx, "hn", "hnic0", "net1"))
	assert.ErrorIs(t, e.api.NetworkDelete(ctx, "net1"), domain.ErrBlocked)

	require.NoError(t, e.api.HeadnodeDetachNetwork(ctx, "hn", "hnic0"))
	require.NoError(t, e.api.NetworkDelete(ctx, "net1"))
}

func TestNetworkShow_ConnectedNodes(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))
	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1"))

	details, err := e.api.NetworkShow(ctx, "net1")
	require.NoError(t, err)
	assert.Empty(t, details.Nodes)

	_, err = newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)

	details, err = e.api.NetworkShow(ctx, "net1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, details.Nodes)
}
