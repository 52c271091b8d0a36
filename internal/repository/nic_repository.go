package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// NicRepository defines domain-specific operations for nics. Nics are
// namespaced by their node: labels are only unique within one node.
type NicRepository interface {
	Repository[domain.Nic, int64]
	FindByNodeAndLabel(ctx context.Context, nodeID int64, label string) (domain.Nic, error)
	FindByNode(ctx context.Context, nodeID int64) ([]domain.Nic, error)
	FindByPort(ctx context.Context, portID int64) (domain.Nic, error)
	SetPort(ctx context.Context, nicID int64, portID *int64) error
}

// nicRepositoryImpl implements NicRepository
type nicRepositoryImpl struct {
	baseRepository[domain.Nic]
}

// NewNicRepository creates a new nic repository
func NewNicRepository(q Querier) NicRepository {
	return &nicRepositoryImpl{
		baseRepository: newBaseRepository(q, "nics", "id, node_id, label, macaddr, port_id", scanNic),
	}
}

func scanNic(s scanner) (domain.Nic, error) {
	var n domain.Nic
	var port sql.NullInt64
	if err := s.Scan(&n.ID, &n.NodeID, &n.Label, &n.MACAddr, &port); err != nil {
		return domain.Nic{}, err
	}
	n.PortID = ptrInt64(port)
	return n, nil
}

// Save creates or updates a nic
func (r *nicRepositoryImpl) Save(ctx context.Context, n domain.Nic) (domain.Nic, error) {
	if n.NodeID == 0 {
		return domain.Nic{}, fmt.Errorf("node ID is required: %w", domain.ErrBadArgument)
	}
	if n.Label == "" {
		return domain.Nic{}, fmt.Errorf("nic label is required: %w", domain.ErrBadArgument)
	}

	dup, err := r.count(ctx, "node_id = ? AND label = ? AND id != ?", n.NodeID, n.Label, n.ID)
	if err != nil {
		return domain.Nic{}, err
	}
	if dup > 0 {
		return domain.Nic{}, fmt.Errorf("nic %q on node %d: %w", n.Label, n.NodeID, domain.ErrDuplicate)
	}
	if n.PortID != nil {
		if err := r.checkPortFree(ctx, *n.PortID, n.ID); err != nil {
			return domain.Nic{}, err
		}
	}

	if n.ID == 0 {
		id, err := r.insert(ctx, "INSERT INTO nics (node_id, label, macaddr, port_id) VALUES (?, ?, ?, ?)",
			n.NodeID, n.Label, n.MACAddr, nullInt64(n.PortID))
		if err != nil {
			return domain.Nic{}, err
		}
		n.ID = id
		return n, nil
	}

	err = r.exec(ctx, n.ID, "UPDATE nics SET label = ?, macaddr = ?, port_id = ? WHERE id = ?",
		n.Label, n.MACAddr, nullInt64(n.PortID), n.ID)
	if err != nil {
		return domain.Nic{}, err
	}
	return n, nil
}

// FindByNodeAndLabel finds a nic by its label within a node
func (r *nicRepositoryImpl) FindByNodeAndLabel(ctx context.Context, nodeID int64, label string) (domain.Nic, error) {
	return r.findOne(ctx, fmt.Sprintf("%q on node %d", label, nodeID), "node_id = ? AND label = ?", nodeID, label)
}

// FindByNode lists the nics of a node
func (r *nicRepositoryImpl) FindByNode(ctx context.Context, nodeID int64) ([]domain.Nic, error) {
	return r.findMany(ctx, "node_id = ?", nodeID)
}

// FindByPort finds the nic bound to a port
func (r *nicRepositoryImpl) FindByPort(ctx context.Context, portID int64) (domain.Nic, error) {
	return r.findOne(ctx, fmt.Sprintf("on port %d", portID), "port_id = ?", portID)
}

// SetPort binds a nic to a port, or unbinds it when portID is nil
func (r *nicRepositoryImpl) SetPort(ctx context.Context, nicID int64, portID *int64) error {
	if portID != nil {
		if err := r.checkPortFree(ctx, *portID, nicID); err != nil {
			return err
		}
	}
	return r.exec(ctx, nicID, "UPDATE nics SET port_id = ? WHERE id = ?", nullInt64(portID), nicID)
}

// checkPortFree fails with domain.ErrDuplicate if another nic holds the port
func (r *nicRepositoryImpl) checkPortFree(ctx context.Context, portID, nicID int64) error {
	n, err := r.count(ctx, "port_id = ? AND id != ?", portID, nicID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("port %d is already bound to a nic: %w", portID, domain.ErrDuplicate)
	}
	return nil
}
