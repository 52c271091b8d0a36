package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// NetworkRepository defines domain-specific operations for networks
type NetworkRepository interface {
	Repository[domain.Network, int64]
	FindByLabel(ctx context.Context, label string) (domain.Network, error)
	FindByNetworkID(ctx context.Context, networkID string) (domain.Network, error)
	FindVisibleTo(ctx context.Context, projectID int64) ([]domain.Network, error)
	CountByProject(ctx context.Context, projectID int64) (int, error)
}

// networkRepositoryImpl implements NetworkRepository
type networkRepositoryImpl struct {
	baseRepository[domain.Network]
}

// NewNetworkRepository creates a new network repository
func NewNetworkRepository(q Querier) NetworkRepository {
	return &networkRepositoryImpl{
		baseRepository: newBaseRepository(q, "networks",
			"id, label, creator_id, access_id, allocated, network_id", scanNetwork),
	}
}

func scanNetwork(s scanner) (domain.Network, error) {
	var n domain.Network
	var creator, access sql.NullInt64
	if err := s.Scan(&n.ID, &n.Label, &creator, &access, &n.Allocated, &n.NetworkID); err != nil {
		return domain.Network{}, err
	}
	n.CreatorID = ptrInt64(creator)
	n.AccessID = ptrInt64(access)
	return n, nil
}

// Save creates a network. Only the label of an existing network may change.
func (r *networkRepositoryImpl) Save(ctx context.Context, n domain.Network) (domain.Network, error) {
	if n.Label == "" {
		return domain.Network{}, fmt.Errorf("network label is required: %w", domain.ErrBadArgument)
	}

	dup, err := r.count(ctx, "label = ? AND id != ?", n.Label, n.ID)
	if err != nil {
		return domain.Network{}, err
	}
	if dup > 0 {
		return domain.Network{}, fmt.Errorf("network %q: %w", n.Label, domain.ErrDuplicate)
	}

	if n.ID != 0 {
		if err := r.exec(ctx, n.ID, "UPDATE networks SET label = ? WHERE id = ?", n.Label, n.ID); err != nil {
			return domain.Network{}, err
		}
		return r.FindByID(ctx, n.ID)
	}

	if n.NetworkID == "" {
		return domain.Network{}, fmt.Errorf("network identifier is required: %w", domain.ErrBadArgument)
	}
	dup, err = r.count(ctx, "network_id = ?", n.NetworkID)
	if err != nil {
		return domain.Network{}, err
	}
	if dup > 0 {
		return domain.Network{}, fmt.Errorf("network identifier %q is in use: %w", n.NetworkID, domain.ErrDuplicate)
	}

	id, err := r.insert(ctx,
		"INSERT INTO networks (label, creator_id, access_id, allocated, network_id) VALUES (?, ?, ?, ?, ?)",
		n.Label, nullInt64(n.CreatorID), nullInt64(n.AccessID), n.Allocated, n.NetworkID)
	if err != nil {
		return domain.Network{}, err
	}
	n.ID = id
	return n, nil
}

// FindByLabel finds a network by label
func (r *networkRepositoryImpl) FindByLabel(ctx context.Context, label string) (domain.Network, error) {
	return r.findOne(ctx, fmt.Sprintf("%q", label), "label = ?", label)
}

// FindByNetworkID finds a network by its allocator identifier
func (r *networkRepositoryImpl) FindByNetworkID(ctx context.Context, networkID string) (domain.Network, error) {
	return r.findOne(ctx, fmt.Sprintf("with identifier %q", networkID), "network_id = ?", networkID)
}

// FindVisibleTo lists the public networks plus those the project may access
func (r *networkRepositoryImpl) FindVisibleTo(ctx context.Context, projectID int64) ([]domain.Network, error) {
	return r.findMany(ctx, "access_id IS NULL OR access_id = ?", projectID)
}

// CountByProject counts the networks a project created or has access to
func (r *networkRepositoryImpl) CountByProject(ctx context.Context, projectID int64) (int, error) {
	return r.count(ctx, "creator_id = ? OR access_id = ?", projectID, projectID)
}
