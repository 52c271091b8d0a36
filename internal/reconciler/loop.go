package reconciler

import (
	"context"
	"time"

	"github.com/jbweber/homelab/hil/internal/log"
)

// Run reconciles until ctx is cancelled. After a pass that consumed entries
// the next pass starts at once; otherwise Run waits interval. Failed passes
// are logged and retried.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	logger := log.G(log.WithModule(ctx, "reconciler"))
	logger.WithField("interval", interval).Info("reconcile loop started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("reconcile loop stopped")
			return nil
		case <-timer.C:
		}

		didWork, err := r.ReconcileOnce(ctx)
		if err != nil {
			logger.WithError(err).Warn("reconcile pass failed")
		}

		if didWork {
			timer.Reset(0)
		} else {
			timer.Reset(interval)
		}
	}
}
