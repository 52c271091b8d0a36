package repository

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// ProjectRepository defines domain-specific operations for projects
type ProjectRepository interface {
	Repository[domain.Project, int64]
	FindByLabel(ctx context.Context, label string) (domain.Project, error)
}

// projectRepositoryImpl implements ProjectRepository
type projectRepositoryImpl struct {
	baseRepository[domain.Project]
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(q Querier) ProjectRepository {
	return &projectRepositoryImpl{
		baseRepository: newBaseRepository(q, "projects", "id, label", scanProject),
	}
}

func scanProject(s scanner) (domain.Project, error) {
	var p domain.Project
	err := s.Scan(&p.ID, &p.Label)
	return p, err
}

// Save creates or renames a project
func (r *projectRepositoryImpl) Save(ctx context.Context, p domain.Project) (domain.Project, error) {
	if p.Label == "" {
		return domain.Project{}, fmt.Errorf("project label is required: %w", domain.ErrBadArgument)
	}

	// Check for duplicate label (excluding current project)
	n, err := r.count(ctx, "label = ? AND id != ?", p.Label, p.ID)
	if err != nil {
		return domain.Project{}, err
	}
	if n > 0 {
		return domain.Project{}, fmt.Errorf("project %q: %w", p.Label, domain.ErrDuplicate)
	}

	if p.ID == 0 {
		id, err := r.insert(ctx, "INSERT INTO projects (label) VALUES (?)", p.Label)
		if err != nil {
			return domain.Project{}, err
		}
		p.ID = id
		return p, nil
	}

	if err := r.exec(ctx, p.ID, "UPDATE projects SET label = ? WHERE id = ?", p.Label, p.ID); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

// FindByLabel finds a project by label
func (r *projectRepositoryImpl) FindByLabel(ctx context.Context, label string) (domain.Project, error) {
	return r.findOne(ctx, fmt.Sprintf("%q", label), "label = ?", label)
}
