package repository

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// SwitchRepository defines domain-specific operations for switches
type SwitchRepository interface {
	Repository[domain.Switch, int64]
	FindByLabel(ctx context.Context, label string) (domain.Switch, error)
}

// switchRepositoryImpl implements SwitchRepository
type switchRepositoryImpl struct {
	baseRepository[domain.Switch]
}

// NewSwitchRepository creates a new switch repository
func NewSwitchRepository(q Querier) SwitchRepository {
	return &switchRepositoryImpl{
		baseRepository: newBaseRepository(q, "switches", "id, label, type, config", scanSwitch),
	}
}

func scanSwitch(s scanner) (domain.Switch, error) {
	var sw domain.Switch
	var typ, config string
	if err := s.Scan(&sw.ID, &sw.Label, &typ, &config); err != nil {
		return domain.Switch{}, err
	}
	cfg, err := domain.UnmarshalConfig(config)
	if err != nil {
		return domain.Switch{}, err
	}
	sw.Type = domain.SwitchType(typ)
	sw.Config = cfg
	return sw, nil
}

// Save creates or updates a switch. The stored type always matches the
// config variant.
func (r *switchRepositoryImpl) Save(ctx context.Context, sw domain.Switch) (domain.Switch, error) {
	if sw.Label == "" {
		return domain.Switch{}, fmt.Errorf("switch label is required: %w", domain.ErrBadArgument)
	}
	if err := sw.Config.Validate(); err != nil {
		return domain.Switch{}, err
	}
	typ, err := sw.Config.Type()
	if err != nil {
		return domain.Switch{}, err
	}
	if sw.Type != "" && sw.Type != typ {
		return domain.Switch{}, fmt.Errorf("switch type %q does not match %q config: %w", sw.Type, typ, domain.ErrBadArgument)
	}
	sw.Type = typ

	config, err := domain.MarshalConfig(sw.Config)
	if err != nil {
		return domain.Switch{}, err
	}

	dup, err := r.count(ctx, "label = ? AND id != ?", sw.Label, sw.ID)
	if err != nil {
		return domain.Switch{}, err
	}
	if dup > 0 {
		return domain.Switch{}, fmt.Errorf("switch %q: %w", sw.Label, domain.ErrDuplicate)
	}

	if sw.ID == 0 {
		id, err := r.insert(ctx, "INSERT INTO switches (label, type, config) VALUES (?, ?, ?)", sw.Label, string(sw.Type), config)
		if err != nil {
			return domain.Switch{}, err
		}
		sw.ID = id
		return sw, nil
	}

	err = r.exec(ctx, sw.ID, "UPDATE switches SET label = ?, type = ?, config = ? WHERE id = ?", sw.Label, string(sw.Type), config, sw.ID)
	if err != nil {
		return domain.Switch{}, err
	}
	return sw, nil
}

// FindByLabel finds a switch by label
func (r *switchRepositoryImpl) FindByLabel(ctx context.Context, label string) (domain.Switch, error) {
	return r.findOne(ctx, fmt.Sprintf("%q", label), "label = ?", label)
}
