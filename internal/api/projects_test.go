package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/domain"
)

func TestProjectCreateDelete(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()

	require.NoError(t, e.api.ProjectCreate(ctx, "acme"))
	assert.ErrorIs(t, e.api.ProjectCreate(ctx, "acme"), domain.ErrDuplicate)

	projects, err := e.api.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, projects)

	require.NoError(t, e.api.ProjectDelete(ctx, "acme"))
	assert.ErrorIs(t, e.api.ProjectDelete(ctx, "acme"), domain.ErrNotFound)
}

func TestProjectDelete_Blocked(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, e *testEnv)
	}{
		{"owns node", func(t *testing.T, e *testEnv) {
			require.NoError(t, e.api.NodeRegister(context.Background(), "n1"))
			require.NoError(t, e.api.ProjectConnectNode(context.Background(), "acme", "n1"))
		}},
		{"owns headnode", func(t *testing.T, e *testEnv) {
			require.NoError(t, e.api.HeadnodeCreate(context.Background(), "hn", "acme", "centos"))
		}},
		{"created network", func(t *testing.T, e *testEnv) {
			require.NoError(t, e.api.NetworkCreate(context.Background(), "net1", "acme", "acme", ""))
		}},
		{"access to network", func(t *testing.T, e *testEnv) {
			require.NoError(t, e.api.NetworkCreate(context.Background(), "net1", AdminCreator, "acme", ""))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupTestAPI(t)
			require.NoError(t, e.api.ProjectCreate(context.Background(), "acme"))
			tt.setup(t, e)
			assert.ErrorIs(t, e.api.ProjectDelete(context.Background(), "acme"), domain.ErrBlocked)
		})
	}
}

func TestProjectConnectDetachNode(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	require.NoError(t, e.api.ProjectCreate(ctx, "acme"))
	require.NoError(t, e.api.ProjectCreate(ctx, "other"))
	require.NoError(t, e.api.NodeRegister(ctx, "n1"))
	require.NoError(t, e.api.NodeRegister(ctx, "n2"))

	require.NoError(t, e.api.ProjectConnectNode(ctx, "acme", "n1"))
	assert.ErrorIs(t, e.api.ProjectConnectNode(ctx, "other", "n1"), domain.ErrBlocked)

	nodes, err := e.api.ListProjectNodes(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, nodes)

	free, err := e.api.ListFreeNodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"n2"}, free)

	assert.ErrorIs(t, e.api.ProjectDetachNode(ctx, "other", "n1"), domain.ErrNotFound)
	require.NoError(t, e.api.ProjectDetachNode(ctx, "acme", "n1"))

	free, err = e.api.ListFreeNodes(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"n1", "n2"}, free)
}

func TestProjectDetachNode_NicsBusy(t *testing.T) {
	e := setupTestAPI(t)
	ctx := context.Background()
	e.cabledNode(t, "acme")
	require.NoError(t, e.api.NetworkCreate(ctx, "net1", "acme", "acme", ""))
	require.NoError(t, e.api.NodeConnectNetwork(ctx, "n1", "eth0", "net1"))

	// Pending
	assert.ErrorIs(t, e.api.ProjectDetachNode(ctx, "acme", "n1"), domain.ErrBlocked)

	// Attached
	_, err := newReconciler(e).ReconcileOnce(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, e.api.ProjectDetachNode(ctx, "acme", "n1"), domain.ErrBlocked)
}
