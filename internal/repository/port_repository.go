package repository

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// PortRepository defines domain-specific operations for switch ports
type PortRepository interface {
	Repository[domain.Port, int64]
	FindBySwitchAndLabel(ctx context.Context, switchID int64, label string) (domain.Port, error)
	FindBySwitch(ctx context.Context, switchID int64) ([]domain.Port, error)
}

// portRepositoryImpl implements PortRepository
type portRepositoryImpl struct {
	baseRepository[domain.Port]
}

// NewPortRepository creates a new port repository
func NewPortRepository(q Querier) PortRepository {
	return &portRepositoryImpl{
		baseRepository: newBaseRepository(q, "ports", "id, switch_id, label", scanPort),
	}
}

func scanPort(s scanner) (domain.Port, error) {
	var p domain.Port
	err := s.Scan(&p.ID, &p.SwitchID, &p.Label)
	return p, err
}

// Save registers a port. Ports are immutable once created.
func (r *portRepositoryImpl) Save(ctx context.Context, p domain.Port) (domain.Port, error) {
	if p.ID != 0 {
		return domain.Port{}, fmt.Errorf("ports cannot be modified: %w", domain.ErrBadArgument)
	}
	if p.SwitchID == 0 {
		return domain.Port{}, fmt.Errorf("switch ID is required: %w", domain.ErrBadArgument)
	}
	if p.Label == "" {
		return domain.Port{}, fmt.Errorf("port label is required: %w", domain.ErrBadArgument)
	}

	dup, err := r.count(ctx, "switch_id = ? AND label = ?", p.SwitchID, p.Label)
	if err != nil {
		return domain.Port{}, err
	}
	if dup > 0 {
		return domain.Port{}, fmt.Errorf("port %q on switch %d: %w", p.Label, p.SwitchID, domain.ErrDuplicate)
	}

	id, err := r.insert(ctx, "INSERT INTO ports (switch_id, label) VALUES (?, ?)", p.SwitchID, p.Label)
	if err != nil {
		return domain.Port{}, err
	}
	p.ID = id
	return p, nil
}

// FindBySwitchAndLabel finds a port by its label within a switch
func (r *portRepositoryImpl) FindBySwitchAndLabel(ctx context.Context, switchID int64, label string) (domain.Port, error) {
	return r.findOne(ctx, fmt.Sprintf("%q on switch %d", label, switchID), "switch_id = ? AND label = ?", switchID, label)
}

// FindBySwitch lists the ports of a switch
func (r *portRepositoryImpl) FindBySwitch(ctx context.Context, switchID int64) ([]domain.Port, error) {
	return r.findMany(ctx, "switch_id = ?", switchID)
}
