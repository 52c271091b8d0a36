package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// NodeRepository defines domain-specific operations for nodes
type NodeRepository interface {
	Repository[domain.Node, int64]
	FindByLabel(ctx context.Context, label string) (domain.Node, error)
	FindByProject(ctx context.Context, projectID int64) ([]domain.Node, error)
	FindFree(ctx context.Context) ([]domain.Node, error)
	SetProject(ctx context.Context, nodeID int64, projectID *int64) error
	CountByProject(ctx context.Context, projectID int64) (int, error)
}

// nodeRepositoryImpl implements NodeRepository
type nodeRepositoryImpl struct {
	baseRepository[domain.Node]
}

// NewNodeRepository creates a new node repository
func NewNodeRepository(q Querier) NodeRepository {
	return &nodeRepositoryImpl{
		baseRepository: newBaseRepository(q, "nodes", "id, label, project_id", scanNode),
	}
}

func scanNode(s scanner) (domain.Node, error) {
	var n domain.Node
	var project sql.NullInt64
	if err := s.Scan(&n.ID, &n.Label, &project); err != nil {
		return domain.Node{}, err
	}
	n.ProjectID = ptrInt64(project)
	return n, nil
}

// Save creates or updates a node
func (r *nodeRepositoryImpl) Save(ctx context.Context, n domain.Node) (domain.Node, error) {
	if n.Label == "" {
		return domain.Node{}, fmt.Errorf("node label is required: %w", domain.ErrBadArgument)
	}

	dup, err := r.count(ctx, "label = ? AND id != ?", n.Label, n.ID)
	if err != nil {
		return domain.Node{}, err
	}
	if dup > 0 {
		return domain.Node{}, fmt.Errorf("node %q: %w", n.Label, domain.ErrDuplicate)
	}

	if n.ID == 0 {
		id, err := r.insert(ctx, "INSERT INTO nodes (label, project_id) VALUES (?, ?)", n.Label, nullInt64(n.ProjectID))
		if err != nil {
			return domain.Node{}, err
		}
		n.ID = id
		return n, nil
	}

	err = r.exec(ctx, n.ID, "UPDATE nodes SET label = ?, project_id = ? WHERE id = ?", n.Label, nullInt64(n.ProjectID), n.ID)
	if err != nil {
		return domain.Node{}, err
	}
	return n, nil
}

// FindByLabel finds a node by label
func (r *nodeRepositoryImpl) FindByLabel(ctx context.Context, label string) (domain.Node, error) {
	return r.findOne(ctx, fmt.Sprintf("%q", label), "label = ?", label)
}

// FindByProject lists the nodes owned by a project
func (r *nodeRepositoryImpl) FindByProject(ctx context.Context, projectID int64) ([]domain.Node, error) {
	return r.findMany(ctx, "project_id = ?", projectID)
}

// FindFree lists the nodes not owned by any project
func (r *nodeRepositoryImpl) FindFree(ctx context.Context) ([]domain.Node, error) {
	return r.findMany(ctx, "project_id IS NULL")
}

// SetProject moves a node into a project, or back to the free pool when projectID is nil
func (r *nodeRepositoryImpl) SetProject(ctx context.Context, nodeID int64, projectID *int64) error {
	return r.exec(ctx, nodeID, "UPDATE nodes SET project_id = ? WHERE id = ?", nullInt64(projectID), nodeID)
}

// CountByProject counts the nodes owned by a project
func (r *nodeRepositoryImpl) CountByProject(ctx context.Context, projectID int64) (int, error) {
	return r.count(ctx, "project_id = ?", projectID)
}
