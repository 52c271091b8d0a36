package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// HnicRepository defines domain-specific operations for headnode nics
type HnicRepository interface {
	Repository[domain.Hnic, int64]
	FindByHeadnodeAndLabel(ctx context.Context, headnodeID int64, label string) (domain.Hnic, error)
	FindByHeadnode(ctx context.Context, headnodeID int64) ([]domain.Hnic, error)
	SetNetwork(ctx context.Context, id int64, networkID *int64) error
	CountByNetwork(ctx context.Context, networkID int64) (int, error)
}

// hnicRepositoryImpl implements HnicRepository
type hnicRepositoryImpl struct {
	baseRepository[domain.Hnic]
}

// NewHnicRepository creates a new hnic repository
func NewHnicRepository(q Querier) HnicRepository {
	return &hnicRepositoryImpl{
		baseRepository: newBaseRepository(q, "hnics", "id, headnode_id, label, network_id", scanHnic),
	}
}

func scanHnic(s scanner) (domain.Hnic, error) {
	var h domain.Hnic
	var network sql.NullInt64
	if err := s.Scan(&h.ID, &h.HeadnodeID, &h.Label, &network); err != nil {
		return domain.Hnic{}, err
	}
	h.NetworkID = ptrInt64(network)
	return h, nil
}

// Save creates an hnic
func (r *hnicRepositoryImpl) Save(ctx context.Context, h domain.Hnic) (domain.Hnic, error) {
	if h.ID != 0 {
		return domain.Hnic{}, fmt.Errorf("use SetNetwork to change an hnic: %w", domain.ErrBadArgument)
	}
	if h.HeadnodeID == 0 {
		return domain.Hnic{}, fmt.Errorf("headnode ID is required: %w", domain.ErrBadArgument)
	}
	if h.Label == "" {
		return domain.Hnic{}, fmt.Errorf("hnic label is required: %w", domain.ErrBadArgument)
	}

	dup, err := r.count(ctx, "headnode_id = ? AND label = ?", h.HeadnodeID, h.Label)
	if err != nil {
		return domain.Hnic{}, err
	}
	if dup > 0 {
		return domain.Hnic{}, fmt.Errorf("hnic %q on headnode %d: %w", h.Label, h.HeadnodeID, domain.ErrDuplicate)
	}

	id, err := r.insert(ctx, "INSERT INTO hnics (headnode_id, label, network_id) VALUES (?, ?, ?)",
		h.HeadnodeID, h.Label, nullInt64(h.NetworkID))
	if err != nil {
		return domain.Hnic{}, err
	}
	h.ID = id
	return h, nil
}

// FindByHeadnodeAndLabel finds an hnic by its label within a headnode
func (r *hnicRepositoryImpl) FindByHeadnodeAndLabel(ctx context.Context, headnodeID int64, label string) (domain.Hnic, error) {
	return r.findOne(ctx, fmt.Sprintf("%q on headnode %d", label, headnodeID), "headnode_id = ? AND label = ?", headnodeID, label)
}

// FindByHeadnode lists a headnode's hnics
func (r *hnicRepositoryImpl) FindByHeadnode(ctx context.Context, headnodeID int64) ([]domain.Hnic, error) {
	return r.findMany(ctx, "headnode_id = ?", headnodeID)
}

// SetNetwork connects an hnic to a network, or disconnects it when networkID is nil
func (r *hnicRepositoryImpl) SetNetwork(ctx context.Context, id int64, networkID *int64) error {
	return r.exec(ctx, id, "UPDATE hnics SET network_id = ? WHERE id = ?", nullInt64(networkID), id)
}

// CountByNetwork counts the hnics connected to a network
func (r *hnicRepositoryImpl) CountByNetwork(ctx context.Context, networkID int64) (int, error) {
	return r.count(ctx, "network_id = ?", networkID)
}
