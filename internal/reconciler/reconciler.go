// Package reconciler drains the networking action journal onto the switches.
package reconciler

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/hil/internal/datastore"
	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/repository"
	"github.com/jbweber/homelab/hil/internal/switches"
)

// Reconciler applies pending networking actions to switch hardware
type Reconciler struct {
	ds       *datastore.Datastore
	registry *switches.Registry
}

// New creates a reconciler
func New(ds *datastore.Datastore, registry *switches.Registry) *Reconciler {
	return &Reconciler{ds: ds, registry: registry}
}

// batch is the work destined for one switch
type batch struct {
	sw      domain.Switch
	changes map[string]string
	actions []domain.NetworkingAction
}

// plan is one pass worth of journal entries grouped by switch
type plan struct {
	batches  map[int64]*batch
	portless []domain.NetworkingAction
	total    int
}

// ReconcileOnce runs one pass over the journal. It reports whether any entry
// was consumed. Entries for a switch whose session fails stay in the journal
// for the next pass; the failures are returned together.
func (r *Reconciler) ReconcileOnce(ctx context.Context) (bool, error) {
	ctx = log.WithModule(ctx, "reconciler")

	p, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	if p.total == 0 {
		return false, nil
	}

	var result *multierror.Error
	var applied []domain.NetworkingAction

	ids := make([]int64, 0, len(p.batches))
	for id := range p.batches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		b := p.batches[id]
		logger := log.G(ctx).WithFields(logrus.Fields{
			"switch":  b.sw.Label,
			"actions": len(b.actions),
		})

		err := switches.WithSession(ctx, r.registry, b.sw, func(s switches.Session) error {
			return s.Apply(ctx, b.changes)
		})
		if err != nil {
			logger.WithError(err).Error("failed to apply networking actions")
			result = multierror.Append(result, fmt.Errorf("switch %q: %w", b.sw.Label, err))
			continue
		}
		logger.Info("applied networking actions")
		applied = append(applied, b.actions...)
	}

	committed, err := r.commit(ctx, applied, p.portless)
	if err != nil {
		result = multierror.Append(result, err)
	}
	return committed > 0, result.ErrorOrNil()
}

// load reads the journal and resolves every entry to a switch port
func (r *Reconciler) load(ctx context.Context) (*plan, error) {
	p := &plan{batches: make(map[int64]*batch)}

	err := r.ds.WithTx(ctx, func(tx *sql.Tx) error {
		repos := repository.New(tx)

		pending, err := repos.Actions.Pending(ctx)
		if err != nil {
			return err
		}
		p.total = len(pending)

		for _, action := range pending {
			nic, err := repos.Nics.FindByID(ctx, action.NicID)
			if err != nil {
				return err
			}

			target := ""
			if action.NewNetworkID != nil {
				network, err := repos.Networks.FindByID(ctx, *action.NewNetworkID)
				if err != nil {
					return err
				}
				target = network.NetworkID
			}

			if nic.PortID == nil {
				log.G(ctx).WithFields(logrus.Fields{
					"nic":        nic.Label,
					"node":       nic.NodeID,
					"network_id": target,
				}).Warn("nic has no switch port, dropping networking action")
				p.portless = append(p.portless, action)
				continue
			}

			port, err := repos.Ports.FindByID(ctx, *nic.PortID)
			if err != nil {
				return err
			}
			b, ok := p.batches[port.SwitchID]
			if !ok {
				sw, err := repos.Switches.FindByID(ctx, port.SwitchID)
				if err != nil {
					return err
				}
				b = &batch{sw: sw, changes: make(map[string]string)}
				p.batches[port.SwitchID] = b
			}
			b.changes[port.Label] = target
			b.actions = append(b.actions, action)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read networking actions: %w", err)
	}
	return p, nil
}

// commit consumes applied entries and updates the attachments they describe.
// Dropped entries are consumed without touching attachments. Entries removed
// since load, for example by nic deletion, are skipped.
func (r *Reconciler) commit(ctx context.Context, applied, dropped []domain.NetworkingAction) (int, error) {
	if len(applied) == 0 && len(dropped) == 0 {
		return 0, nil
	}

	committed := 0
	err := r.ds.WithTx(ctx, func(tx *sql.Tx) error {
		repos := repository.New(tx)
		committed = 0

		for _, action := range dropped {
			ok, err := consume(ctx, repos, action)
			if err != nil {
				return err
			}
			if ok {
				committed++
			}
		}

		for _, action := range applied {
			ok, err := consume(ctx, repos, action)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := repos.Attachments.DeleteByNic(ctx, action.NicID); err != nil {
				return err
			}
			if action.NewNetworkID != nil {
				if _, err := repos.Attachments.Save(ctx, domain.NetworkAttachment{
					NicID:     action.NicID,
					NetworkID: *action.NewNetworkID,
					Channel:   domain.DefaultChannel,
				}); err != nil {
					return err
				}
			}
			committed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to commit networking actions: %w", err)
	}
	return committed, nil
}

// consume deletes a journal entry, reporting false when it is already gone
func consume(ctx context.Context, repos *repository.Repositories, action domain.NetworkingAction) (bool, error) {
	exists, err := repos.Actions.ExistsByID(ctx, action.ID)
	if err != nil {
		return false, err
	}
	if !exists {
		log.G(ctx).WithField("action", action.ID).Debug("networking action vanished before commit")
		return false, nil
	}
	if err := repos.Actions.DeleteByID(ctx, action.ID); err != nil {
		return false, err
	}
	return true, nil
}
