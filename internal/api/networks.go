package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/repository"
)

// NetworkDetails describes a network and what is attached to it
type NetworkDetails struct {
	Name      string   `json:"name"`
	Creator   string   `json:"creator"`
	Access    *string  `json:"access"`
	Allocated bool     `json:"allocated"`
	NetworkID string   `json:"network_id"`
	Nodes     []string `json:"connected_nodes"`
	Headnodes []string `json:"connected_headnodes"`
}

// NetworkCreate creates a network. creator is a project label or
// AdminCreator; an empty access makes the network public. Project created
// networks must be private to their creator and always draw their identifier
// from the allocator. An administrator may supply netID, otherwise one is
// allocated.
func (a *API) NetworkCreate(ctx context.Context, label, creator, access, netID string) error {
	return a.withRepos(ctx, func(tx *sql.Tx, r *repository.Repositories) error {
		if _, err := r.Networks.FindByLabel(ctx, label); err == nil {
			return fmt.Errorf("network %q already exists: %w", label, domain.ErrDuplicate)
		}

		if creator == "" {
			return fmt.Errorf("network creator is required: %w", domain.ErrBadArgument)
		}
		if creator != AdminCreator {
			if access != creator {
				return fmt.Errorf("project network %q must be private to its creator: %w", label, domain.ErrBadArgument)
			}
			if netID != "" {
				return fmt.Errorf("only the administrator may choose a network id: %w", domain.ErrBadArgument)
			}
		}

		network := domain.Network{Label: label}
		if creator != AdminCreator {
			project, err := r.Projects.FindByLabel(ctx, creator)
			if err != nil {
				return err
			}
			network.CreatorID = &project.ID
		}
		if access != "" {
			project, err := r.Projects.FindByLabel(ctx, access)
			if err != nil {
				return err
			}
			network.AccessID = &project.ID
		}

		if netID == "" {
			id, err := a.alloc.Allocate(ctx, tx)
			if err != nil {
				return err
			}
			network.NetworkID = id
			network.Allocated = true
		} else {
			network.NetworkID = netID
		}

		saved, err := r.Networks.Save(ctx, network)
		if err != nil {
			return err
		}
		log.G(ctx).WithFields(logrus.Fields{
			"network":    label,
			"network_id": saved.NetworkID,
			"allocated":  saved.Allocated,
		}).Info("network created")
		return nil
	})
}

// NetworkDelete deletes a network nothing references. An allocated
// identifier goes back to the pool in the same transaction.
func (a *API) NetworkDelete(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(tx *sql.Tx, r *repository.Repositories) error {
		network, err := r.Networks.FindByLabel(ctx, label)
		if err != nil {
			return err
		}

		checks := []struct {
			what  string
			count func(context.Context, int64) (int, error)
		}{
			{"attached nics", r.Attachments.CountByNetwork},
			{"pending actions", r.Actions.CountByNetwork},
			{"connected hnics", r.Hnics.CountByNetwork},
		}
		for _, c := range checks {
			n, err := c.count(ctx, network.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("network %q still has %d %s: %w", label, n, c.what, domain.ErrBlocked)
			}
		}

		if network.Allocated {
			if err := a.alloc.Free(ctx, tx, network.NetworkID); err != nil {
				return err
			}
		}
		if err := r.Networks.DeleteByID(ctx, network.ID); err != nil {
			return err
		}
		log.G(ctx).WithField("network", label).WithField("network_id", network.NetworkID).Info("network deleted")
		return nil
	})
}

// NetworkShow describes a network
func (a *API) NetworkShow(ctx context.Context, label string) (NetworkDetails, error) {
	var details NetworkDetails
	err := a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		network, err := r.Networks.FindByLabel(ctx, label)
		if err != nil {
			return err
		}
		details = NetworkDetails{
			Name:      network.Label,
			Creator:   AdminCreator,
			Allocated: network.Allocated,
			NetworkID: network.NetworkID,
			Nodes:     []string{},
			Headnodes: []string{},
		}

		if network.CreatorID != nil {
			p, err := r.Projects.FindByID(ctx, *network.CreatorID)
			if err != nil {
				return err
			}
			details.Creator = p.Label
		}
		if network.AccessID != nil {
			p, err := r.Projects.FindByID(ctx, *network.AccessID)
			if err != nil {
				return err
			}
			details.Access = &p.Label
		}

		attachments, err := r.Attachments.FindByNetwork(ctx, network.ID)
		if err != nil {
			return err
		}
		seen := make(map[int64]bool)
		for _, att := range attachments {
			nic, err := r.Nics.FindByID(ctx, att.NicID)
			if err != nil {
				return err
			}
			if seen[nic.NodeID] {
				continue
			}
			seen[nic.NodeID] = true
			node, err := r.Nodes.FindByID(ctx, nic.NodeID)
			if err != nil {
				return err
			}
			details.Nodes = append(details.Nodes, node.Label)
		}

		headnodes, err := r.Headnodes.FindAll(ctx)
		if err != nil {
			return err
		}
		for _, h := range headnodes {
			hnics, err := r.Hnics.FindByHeadnode(ctx, h.ID)
			if err != nil {
				return err
			}
			for _, hnic := range hnics {
				if hnic.NetworkID != nil && *hnic.NetworkID == network.ID {
					details.Headnodes = append(details.Headnodes, h.Label)
					break
				}
			}
		}
		return nil
	})
	return details, err
}
