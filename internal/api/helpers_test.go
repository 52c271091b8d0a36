package api

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/allocator"
	"github.com/jbweber/homelab/hil/internal/datastore"
	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/reconciler"
	"github.com/jbweber/homelab/hil/internal/repository"
	"github.com/jbweber/homelab/hil/internal/switches"
	"github.com/jbweber/homelab/hil/internal/switches/mock"
	"github.com/jbweber/homelab/hil/internal/switches/null"
	"github.com/jbweber/homelab/hil/internal/testutil"
)

type testEnv struct {
	api      *API
	ds       *datastore.Datastore
	mock     *mock.Driver
	registry *switches.Registry
}

// setupTestAPI returns an API over a migrated in-memory database with a
// vlan pool of 84-85 and the mock and null switch families enabled
func setupTestAPI(t *testing.T) *testEnv {
	t.Helper()
	ds := testutil.SetupTestDatastore(t, t.Name())

	alloc, err := allocator.New(allocator.Options{VLANPool: &allocator.VLANPoolOptions{VLANs: "84-85"}})
	require.NoError(t, err)
	require.NoError(t, ds.WithTx(context.Background(), func(tx *sql.Tx) error {
		return alloc.Populate(context.Background(), tx)
	}))

	m := mock.New()
	registry := switches.NewRegistry(m, null.New())
	return &testEnv{
		api:      NewAPI(ds, alloc, registry),
		ds:       ds,
		mock:     m,
		registry: registry,
	}
}

// view runs fn against a read transaction
func (e *testEnv) view(t *testing.T, fn func(r *repository.Repositories)) {
	t.Helper()
	require.NoError(t, e.ds.WithTx(context.Background(), func(tx *sql.Tx) error {
		fn(repository.New(tx))
		return nil
	}))
}

func (e *testEnv) pending(t *testing.T) []domain.NetworkingAction {
	t.Helper()
	var actions []domain.NetworkingAction
	e.view(t, func(r *repository.Repositories) {
		var err error
		actions, err = r.Actions.Pending(context.Background())
		require.NoError(t, err)
	})
	return actions
}

// cabledNode registers project, node n1 with nic eth0 cabled to port p1 of
// mock switch sw0, and moves the node into the project
func (e *testEnv) cabledNode(t *testing.T, project string) {
	t.Helper()
	ctx := context.Background()
	a := e.api

	if project != "" {
		require.NoError(t, a.ProjectCreate(ctx, project))
	}
	require.NoError(t, a.NodeRegister(ctx, "n1"))
	require.NoError(t, a.NodeRegisterNic(ctx, "n1", "eth0", "de:ad:be:ef:00:01"))
	require.NoError(t, a.SwitchRegister(ctx, "sw0", domain.SwitchConfig{Mock: &domain.MockConfig{}}))
	require.NoError(t, a.SwitchRegisterPort(ctx, "sw0", "p1"))
	require.NoError(t, a.PortConnectNic(ctx, "sw0", "p1", "n1", "eth0"))
	if project != "" {
		require.NoError(t, a.ProjectConnectNode(ctx, project, "n1"))
	}
}

func newReconciler(e *testEnv) *reconciler.Reconciler {
	return reconciler.New(e.ds, e.registry)
}
