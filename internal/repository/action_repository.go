package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// ActionRepository is the networking action journal. Entries are ordered by
// their monotonic ID and each nic has at most one pending entry.
type ActionRepository interface {
	Repository[domain.NetworkingAction, int64]
	// Append adds an entry for the nic. Returns domain.ErrBlocked if the nic
	// already has a pending entry.
	Append(ctx context.Context, nicID int64, newNetworkID *int64) (domain.NetworkingAction, error)
	FindByNic(ctx context.Context, nicID int64) (domain.NetworkingAction, error)
	HasPending(ctx context.Context, nicID int64) (bool, error)
	// Pending returns every entry in journal order
	Pending(ctx context.Context) ([]domain.NetworkingAction, error)
	CountByNetwork(ctx context.Context, networkID int64) (int, error)
}

// actionRepositoryImpl implements ActionRepository
type actionRepositoryImpl struct {
	baseRepository[domain.NetworkingAction]
}

// NewActionRepository creates a new action journal repository
func NewActionRepository(q Querier) ActionRepository {
	return &actionRepositoryImpl{
		baseRepository: newBaseRepository(q, "networking_actions", "id, nic_id, new_network_id", scanAction),
	}
}

func scanAction(s scanner) (domain.NetworkingAction, error) {
	var a domain.NetworkingAction
	var target sql.NullInt64
	if err := s.Scan(&a.ID, &a.NicID, &target); err != nil {
		return domain.NetworkingAction{}, err
	}
	a.NewNetworkID = ptrInt64(target)
	return a, nil
}

// Save appends a new entry. Journal entries are never rewritten in place.
func (r *actionRepositoryImpl) Save(ctx context.Context, a domain.NetworkingAction) (domain.NetworkingAction, error) {
	if a.ID != 0 {
		return domain.NetworkingAction{}, fmt.Errorf("journal entries cannot be modified: %w", domain.ErrBadArgument)
	}
	return r.Append(ctx, a.NicID, a.NewNetworkID)
}

// Append adds an entry for the nic
func (r *actionRepositoryImpl) Append(ctx context.Context, nicID int64, newNetworkID *int64) (domain.NetworkingAction, error) {
	pending, err := r.HasPending(ctx, nicID)
	if err != nil {
		return domain.NetworkingAction{}, err
	}
	if pending {
		return domain.NetworkingAction{}, fmt.Errorf("nic %d has a pending networking action: %w", nicID, domain.ErrBlocked)
	}

	id, err := r.insert(ctx, "INSERT INTO networking_actions (nic_id, new_network_id) VALUES (?, ?)", nicID, nullInt64(newNetworkID))
	if err != nil {
		return domain.NetworkingAction{}, err
	}
	return domain.NetworkingAction{ID: id, NicID: nicID, NewNetworkID: newNetworkID}, nil
}

// FindByNic finds the pending entry of a nic
func (r *actionRepositoryImpl) FindByNic(ctx context.Context, nicID int64) (domain.NetworkingAction, error) {
	return r.findOne(ctx, fmt.Sprintf("for nic %d", nicID), "nic_id = ?", nicID)
}

// HasPending reports whether the nic has a pending entry
func (r *actionRepositoryImpl) HasPending(ctx context.Context, nicID int64) (bool, error) {
	n, err := r.count(ctx, "nic_id = ?", nicID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Pending returns every entry in journal order
func (r *actionRepositoryImpl) Pending(ctx context.Context) ([]domain.NetworkingAction, error) {
	return r.findMany(ctx, "")
}

// CountByNetwork counts the entries targeting a network
func (r *actionRepositoryImpl) CountByNetwork(ctx context.Context, networkID int64) (int, error) {
	return r.count(ctx, "new_network_id = ?", networkID)
}
