package repository

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// HeadnodeRepository defines domain-specific operations for headnodes
type HeadnodeRepository interface {
	Repository[domain.Headnode, int64]
	FindByLabel(ctx context.Context, label string) (domain.Headnode, error)
	FindByProject(ctx context.Context, projectID int64) ([]domain.Headnode, error)
	// MarkClean freezes a headnode. Once clean it never becomes dirty again.
	MarkClean(ctx context.Context, id int64) error
	CountByProject(ctx context.Context, projectID int64) (int, error)
}

// headnodeRepositoryImpl implements HeadnodeRepository
type headnodeRepositoryImpl struct {
	baseRepository[domain.Headnode]
}

// NewHeadnodeRepository creates a new headnode repository
func NewHeadnodeRepository(q Querier) HeadnodeRepository {
	return &headnodeRepositoryImpl{
		baseRepository: newBaseRepository(q, "headnodes", "id, label, project_id, base_img, dirty", scanHeadnode),
	}
}

func scanHeadnode(s scanner) (domain.Headnode, error) {
	var h domain.Headnode
	err := s.Scan(&h.ID, &h.Label, &h.ProjectID, &h.BaseImg, &h.Dirty)
	return h, err
}

// Save creates a headnode. New headnodes always start dirty.
func (r *headnodeRepositoryImpl) Save(ctx context.Context, h domain.Headnode) (domain.Headnode, error) {
	if h.ID != 0 {
		return domain.Headnode{}, fmt.Errorf("headnodes cannot be modified: %w", domain.ErrBadArgument)
	}
	if h.Label == "" {
		return domain.Headnode{}, fmt.Errorf("headnode label is required: %w", domain.ErrBadArgument)
	}
	if h.ProjectID == 0 {
		return domain.Headnode{}, fmt.Errorf("project ID is required: %w", domain.ErrBadArgument)
	}

	dup, err := r.count(ctx, "label = ?", h.Label)
	if err != nil {
		return domain.Headnode{}, err
	}
	if dup > 0 {
		return domain.Headnode{}, fmt.Errorf("headnode %q: %w", h.Label, domain.ErrDuplicate)
	}

	id, err := r.insert(ctx, "INSERT INTO headnodes (label, project_id, base_img, dirty) VALUES (?, ?, ?, 1)",
		h.Label, h.ProjectID, h.BaseImg)
	if err != nil {
		return domain.Headnode{}, err
	}
	h.ID = id
	h.Dirty = true
	return h, nil
}

// FindByLabel finds a headnode by label
func (r *headnodeRepositoryImpl) FindByLabel(ctx context.Context, label string) (domain.Headnode, error) {
	return r.findOne(ctx, fmt.Sprintf("%q", label), "label = ?", label)
}

// FindByProject lists a project's headnodes
func (r *headnodeRepositoryImpl) FindByProject(ctx context.Context, projectID int64) ([]domain.Headnode, error) {
	return r.findMany(ctx, "project_id = ?", projectID)
}

// MarkClean freezes a headnode
func (r *headnodeRepositoryImpl) MarkClean(ctx context.Context, id int64) error {
	return r.exec(ctx, id, "UPDATE headnodes SET dirty = 0 WHERE id = ?", id)
}

// CountByProject counts a project's headnodes
func (r *headnodeRepositoryImpl) CountByProject(ctx context.Context, projectID int64) (int, error) {
	return r.count(ctx, "project_id = ?", projectID)
}
