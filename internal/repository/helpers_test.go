package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/testutil"
)

// setupRepos returns repositories bound to a fresh migrated database
func setupRepos(t *testing.T) *Repositories {
	t.Helper()
	db, cleanup := testutil.SetupTestDBWithMigrations(t, t.Name())
	t.Cleanup(cleanup)
	return New(db)
}

func int64Ptr(v int64) *int64 {
	return &v
}

// seedNic creates a node with one nic bound to a port on a mock switch
func seedNic(t *testing.T, ctx context.Context, r *Repositories, node, port string) (domain.Node, domain.Nic, domain.Port) {
	t.Helper()

	sw, err := r.Switches.FindByLabel(ctx, "sw0")
	if err != nil {
		sw, err = r.Switches.Save(ctx, domain.Switch{Label: "sw0", Config: domain.SwitchConfig{Mock: &domain.MockConfig{}}})
		require.NoError(t, err)
	}
	p, err := r.Ports.Save(ctx, domain.Port{SwitchID: sw.ID, Label: port})
	require.NoError(t, err)

	n, err := r.Nodes.Save(ctx, domain.Node{Label: node})
	require.NoError(t, err)
	nic, err := r.Nics.Save(ctx, domain.Nic{NodeID: n.ID, Label: "eth0", PortID: &p.ID})
	require.NoError(t, err)
	return n, nic, p
}
