package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/repository"
)

// NodeDetails describes a node and its nics
type NodeDetails struct {
	Name    string       `json:"name"`
	Project *string      `json:"project"`
	Nics    []NicDetails `json:"nics"`
}

// NicDetails describes a nic's bindings. Networks lists the applied
// attachment keyed by channel.
type NicDetails struct {
	Label    string            `json:"label"`
	MACAddr  string            `json:"macaddr"`
	Switch   string            `json:"switch,omitempty"`
	Port     string            `json:"port,omitempty"`
	Networks map[string]string `json:"networks"`
	Pending  bool              `json:"pending"`
}

// NodeRegister registers a node in the free pool
func (a *API) NodeRegister(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		_, err := r.Nodes.Save(ctx, domain.Node{Label: label})
		return err
	})
}

// NodeDelete deletes a free node whose nics are disconnected
func (a *API) NodeDelete(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		node, err := r.Nodes.FindByLabel(ctx, label)
		if err != nil {
			return err
		}
		if node.ProjectID != nil {
			return fmt.Errorf("node %q is owned by a project: %w", label, domain.ErrBlocked)
		}
		if err := checkNicsIdle(ctx, r, node); err != nil {
			return err
		}
		return r.Nodes.DeleteByID(ctx, node.ID)
	})
}

// NodeRegisterNic adds a nic to a node
func (a *API) NodeRegisterNic(ctx context.Context, nodeLabel, nicLabel, macaddr string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		node, err := r.Nodes.FindByLabel(ctx, nodeLabel)
		if err != nil {
			return err
		}
		_, err = r.Nics.Save(ctx, domain.Nic{NodeID: node.ID, Label: nicLabel, MACAddr: macaddr})
		return err
	})
}

// NodeDeleteNic removes a nic that is not attached to a network. Any pending
// action for the nic is dropped with it.
func (a *API) NodeDeleteNic(ctx context.Context, nodeLabel, nicLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		_, nic, err := findNic(ctx, r, nodeLabel, nicLabel)
		if err != nil {
			return err
		}
		if _, err := r.Attachments.FindByNic(ctx, nic.ID); err == nil {
			return fmt.Errorf("nic %q on node %q is attached to a network: %w", nicLabel, nodeLabel, domain.ErrBlocked)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if action, err := r.Actions.FindByNic(ctx, nic.ID); err == nil {
			if err := r.Actions.DeleteByID(ctx, action.ID); err != nil {
				return err
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		return r.Nics.DeleteByID(ctx, nic.ID)
	})
}

// NodeConnectNetwork journals the attachment of a nic to a network. The
// switch is reconfigured later by the reconciler.
func (a *API) NodeConnectNetwork(ctx context.Context, nodeLabel, nicLabel, networkLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		node, nic, err := findNic(ctx, r, nodeLabel, nicLabel)
		if err != nil {
			return err
		}
		network, err := r.Networks.FindByLabel(ctx, networkLabel)
		if err != nil {
			return err
		}
		if node.ProjectID == nil {
			return fmt.Errorf("node %q is not in a project: %w", nodeLabel, domain.ErrProjectMismatch)
		}
		if err := checkNotPending(ctx, r, nic); err != nil {
			return err
		}
		if network.AccessID != nil && *network.AccessID != *node.ProjectID {
			return fmt.Errorf("project does not have access to network %q: %w", networkLabel, domain.ErrProjectMismatch)
		}
		if _, err := r.Attachments.FindByNic(ctx, nic.ID); err == nil {
			return fmt.Errorf("nic %q is already attached to a network: %w", nicLabel, domain.ErrBlocked)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		action, err := r.Actions.Append(ctx, nic.ID, &network.ID)
		if err != nil {
			return err
		}
		log.G(ctx).WithFields(logrus.Fields{
			"node":    nodeLabel,
			"nic":     nicLabel,
			"network": networkLabel,
			"action":  action.ID,
		}).Info("queued network attach")
		return nil
	})
}

// NodeDetachNetwork journals the detachment of a nic from a network
func (a *API) NodeDetachNetwork(ctx context.Context, nodeLabel, nicLabel, networkLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		node, nic, err := findNic(ctx, r, nodeLabel, nicLabel)
		if err != nil {
			return err
		}
		network, err := r.Networks.FindByLabel(ctx, networkLabel)
		if err != nil {
			return err
		}
		if node.ProjectID == nil {
			return fmt.Errorf("node %q is not in a project: %w", nodeLabel, domain.ErrProjectMismatch)
		}
		if err := checkNotPending(ctx, r, nic); err != nil {
			return err
		}
		attachment, err := r.Attachments.FindByNic(ctx, nic.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err != nil || attachment.NetworkID != network.ID {
			return fmt.Errorf("nic %q is not attached to network %q: %w", nicLabel, networkLabel, domain.ErrBadArgument)
		}

		action, err := r.Actions.Append(ctx, nic.ID, nil)
		if err != nil {
			return err
		}
		log.G(ctx).WithFields(logrus.Fields{
			"node":    nodeLabel,
			"nic":     nicLabel,
			"network": networkLabel,
			"action":  action.ID,
		}).Info("queued network detach")
		return nil
	})
}

// ListFreeNodes returns the labels of nodes not owned by any project
func (a *API) ListFreeNodes(ctx context.Context) ([]string, error) {
	var labels []string
	err := a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		nodes, err := r.Nodes.FindFree(ctx)
		if err != nil {
			return err
		}
		labels = nodeLabels(nodes)
		return nil
	})
	return labels, err
}

// NodeShow describes a node
func (a *API) NodeShow(ctx context.Context, label string) (NodeDetails, error) {
	var details NodeDetails
	err := a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		node, err := r.Nodes.FindByLabel(ctx, label)
		if err != nil {
			return err
		}
		details = NodeDetails{Name: node.Label, Nics: []NicDetails{}}
		if node.ProjectID != nil {
			project, err := r.Projects.FindByID(ctx, *node.ProjectID)
			if err != nil {
				return err
			}
			details.Project = &project.Label
		}

		nics, err := r.Nics.FindByNode(ctx, node.ID)
		if err != nil {
			return err
		}
		for _, nic := range nics {
			d, err := describeNic(ctx, r, nic)
			if err != nil {
				return err
			}
			details.Nics = append(details.Nics, d)
		}
		return nil
	})
	return details, err
}

func describeNic(ctx context.Context, r *repository.Repositories, nic domain.Nic) (NicDetails, error) {
	d := NicDetails{Label: nic.Label, MACAddr: nic.MACAddr, Networks: map[string]string{}}

	if nic.PortID != nil {
		port, err := r.Ports.FindByID(ctx, *nic.PortID)
		if err != nil {
			return d, err
		}
		sw, err := r.Switches.FindByID(ctx, port.SwitchID)
		if err != nil {
			return d, err
		}
		d.Switch = sw.Label
		d.Port = port.Label
	}

	attachment, err := r.Attachments.FindByNic(ctx, nic.ID)
	switch {
	case err == nil:
		network, err := r.Networks.FindByID(ctx, attachment.NetworkID)
		if err != nil {
			return d, err
		}
		d.Networks[attachment.Channel] = network.Label
	case !errors.Is(err, domain.ErrNotFound):
		return d, err
	}

	pending, err := r.Actions.HasPending(ctx, nic.ID)
	if err != nil {
		return d, err
	}
	d.Pending = pending
	return d, nil
}

// findNic looks up a nic by node and nic label
func findNic(ctx context.Context, r *repository.Repositories, nodeLabel, nicLabel string) (domain.Node, domain.Nic, error) {
	node, err := r.Nodes.FindByLabel(ctx, nodeLabel)
	if err != nil {
		return domain.Node{}, domain.Nic{}, err
	}
	nic, err := r.Nics.FindByNodeAndLabel(ctx, node.ID, nicLabel)
	if err != nil {
		return domain.Node{}, domain.Nic{}, err
	}
	return node, nic, nil
}

// checkNotPending fails with domain.ErrBlocked while the nic has a journal entry
func checkNotPending(ctx context.Context, r *repository.Repositories, nic domain.Nic) error {
	pending, err := r.Actions.HasPending(ctx, nic.ID)
	if err != nil {
		return err
	}
	if pending {
		return fmt.Errorf("nic %q has a pending networking action: %w", nic.Label, domain.ErrBlocked)
	}
	return nil
}

// checkNicsIdle fails with domain.ErrBlocked if any nic of the node is
// attached or has a pending action
func checkNicsIdle(ctx context.Context, r *repository.Repositories, node domain.Node) error {
	nics, err := r.Nics.FindByNode(ctx, node.ID)
	if err != nil {
		return err
	}
	for _, nic := range nics {
		if err := checkNicIdle(ctx, r, nic); err != nil {
			return fmt.Errorf("node %q: %w", node.Label, err)
		}
	}
	return nil
}

func checkNicIdle(ctx context.Context, r *repository.Repositories, nic domain.Nic) error {
	if err := checkNotPending(ctx, r, nic); err != nil {
		return err
	}
	if _, err := r.Attachments.FindByNic(ctx, nic.ID); err == nil {
		return fmt.Errorf("nic %q is attached to a network: %w", nic.Label, domain.ErrBlocked)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
