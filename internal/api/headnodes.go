package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/repository"
)

// HeadnodeDetails describes a headnode
type HeadnodeDetails struct {
	Name    string            `json:"name"`
	Project string            `json:"project"`
	BaseImg string            `json:"base_img"`
	Dirty   bool              `json:"dirty"`
	Hnics   map[string]string `json:"hnics"` // hnic label to network label, empty if unconnected
}

// HeadnodeCreate creates a dirty headnode for a project
func (a *API) HeadnodeCreate(ctx context.Context, label, projectLabel, baseImg string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		project, err := r.Projects.FindByLabel(ctx, projectLabel)
		if err != nil {
			return err
		}
		_, err = r.Headnodes.Save(ctx, domain.Headnode{Label: label, ProjectID: project.ID, BaseImg: baseImg})
		return err
	})
}

// HeadnodeDelete deletes a headnode and its hnics
func (a *API) HeadnodeDelete(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		h, err := r.Headnodes.FindByLabel(ctx, label)
		if err != nil {
			return err
		}
		return r.Headnodes.DeleteByID(ctx, h.ID)
	})
}

// HeadnodeStart freezes the headnode's topology. Starting a frozen headnode
// is allowed.
func (a *API) HeadnodeStart(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		h, err := r.Headnodes.FindByLabel(ctx, label)
		if err != nil {
			return err
		}
		if !h.Dirty {
			return nil
		}
		if err := r.Headnodes.MarkClean(ctx, h.ID); err != nil {
			return err
		}
		log.G(ctx).WithField("headnode", label).Info("headnode frozen")
		return nil
	})
}

// HeadnodeStop stops a headnode. It stays frozen.
func (a *API) HeadnodeStop(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		_, err := r.Headnodes.FindByLabel(ctx, label)
		return err
	})
}

// HeadnodeCreateHnic adds an unconnected hnic to a dirty headnode
func (a *API) HeadnodeCreateHnic(ctx context.Context, headnodeLabel, hnicLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		h, err := findDirtyHeadnode(ctx, r, headnodeLabel)
		if err != nil {
			return err
		}
		_, err = r.Hnics.Save(ctx, domain.Hnic{HeadnodeID: h.ID, Label: hnicLabel})
		return err
	})
}

// HeadnodeDeleteHnic removes an hnic from a dirty headnode
func (a *API) HeadnodeDeleteHnic(ctx context.Context, headnodeLabel, hnicLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		h, err := findDirtyHeadnode(ctx, r, headnodeLabel)
		if err != nil {
			return err
		}
		hnic, err := r.Hnics.FindByHeadnodeAndLabel(ctx, h.ID, hnicLabel)
		if err != nil {
			return err
		}
		return r.Hnics.DeleteByID(ctx, hnic.ID)
	})
}

// HeadnodeConnectNetwork connects an hnic of a dirty headnode to a network
// its project may use. Any previous connection is replaced.
func (a *API) HeadnodeConnectNetwork(ctx context.Context, headnodeLabel, hnicLabel, networkLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		h, err := findDirtyHeadnode(ctx, r, headnodeLabel)
		if err != nil {
			return err
		}
		hnic, err := r.Hnics.FindByHeadnodeAndLabel(ctx, h.ID, hnicLabel)
		if err != nil {
			return err
		}
		network, err := r.Networks.FindByLabel(ctx, networkLabel)
		if err != nil {
			return err
		}
		if network.AccessID != nil && *network.AccessID != h.ProjectID {
			return fmt.Errorf("project does not have access to network %q: %w", networkLabel, domain.ErrProjectMismatch)
		}
		return r.Hnics.SetNetwork(ctx, hnic.ID, &network.ID)
	})
}

// HeadnodeDetachNetwork disconnects an hnic of a dirty headnode
func (a *API) HeadnodeDetachNetwork(ctx context.Context, headnodeLabel, hnicLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		h, err := findDirtyHeadnode(ctx, r, headnodeLabel)
		if err != nil {
			return err
		}
		hnic, err := r.Hnics.FindByHeadnodeAndLabel(ctx, h.ID, hnicLabel)
		if err != nil {
			return err
		}
		return r.Hnics.SetNetwork(ctx, hnic.ID, nil)
	})
}

// HeadnodeShow describes a headnode
func (a *API) HeadnodeShow(ctx context.Context, label string) (HeadnodeDetails, error) {
	var details HeadnodeDetails
	err := a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		h, err := r.Headnodes.FindByLabel(ctx, label)
		if err != nil {
			return err
		}
		project, err := r.Projects.FindByID(ctx, h.ProjectID)
		if err != nil {
			return err
		}
		details = HeadnodeDetails{
			Name:    h.Label,
			Project: project.Label,
			BaseImg: h.BaseImg,
			Dirty:   h.Dirty,
			Hnics:   map[string]string{},
		}

		hnics, err := r.Hnics.FindByHeadnode(ctx, h.ID)
		if err != nil {
			return err
		}
		for _, hnic := range hnics {
			details.Hnics[hnic.Label] = ""
			if hnic.NetworkID == nil {
				continue
			}
			network, err := r.Networks.FindByID(ctx, *hnic.NetworkID)
			if err != nil {
				return err
			}
			details.Hnics[hnic.Label] = network.Label
		}
		return nil
	})
	return details, err
}

// findDirtyHeadnode fails with domain.ErrIllegalState once the headnode has
// been started
func findDirtyHeadnode(ctx context.Context, r *repository.Repositories, label string) (domain.Headnode, error) {
	h, err := r.Headnodes.FindByLabel(ctx, label)
	if err != nil {
		return domain.Headnode{}, err
	}
	if !h.Dirty {
		return domain.Headnode{}, fmt.Errorf("headnode %q has been started and can no longer change: %w", label, domain.ErrIllegalState)
	}
	return h, nil
}
