package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_DrainsJournalUntilCancelled(t *testing.T) {
	f := setup(t)
	nic := f.nic(t, "n1", "sw0", "1/1")
	f.enqueue(t, nic.ID, &f.net.ID)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.rec.Run(ctx, 10*time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		return f.mock.PortNetwork("sw0", "1/1") == "100" && len(f.pending(t)) == 0
	}, 5*time.Second, 10*time.Millisecond)

	// Entries queued later are picked up on a following pass
	f.enqueue(t, nic.ID, nil)
	require.Eventually(t, func() bool {
		return f.mock.PortNetwork("sw0", "1/1") == ""
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
