package api

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/repository"
)

// ProjectCreate creates a project
func (a *API) ProjectCreate(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		_, err := r.Projects.Save(ctx, domain.Project{Label: label})
		return err
	})
}

// ProjectDelete deletes a project that owns nothing
func (a *API) ProjectDelete(ctx context.Context, label string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		project, err := r.Projects.FindByLabel(ctx, label)
		if err != nil {
			return err
		}

		checks := []struct {
			what  string
			count func(context.Context, int64) (int, error)
		}{
			{"nodes", r.Nodes.CountByProject},
			{"headnodes", r.Headnodes.CountByProject},
			{"networks", r.Networks.CountByProject},
		}
		for _, c := range checks {
			n, err := c.count(ctx, project.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("project %q still has %d %s: %w", label, n, c.what, domain.ErrBlocked)
			}
		}

		return r.Projects.DeleteByID(ctx, project.ID)
	})
}

// ProjectConnectNode moves a free node into a project
func (a *API) ProjectConnectNode(ctx context.Context, projectLabel, nodeLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		project, err := r.Projects.FindByLabel(ctx, projectLabel)
		if err != nil {
			return err
		}
		node, err := r.Nodes.FindByLabel(ctx, nodeLabel)
		if err != nil {
			return err
		}
		if node.ProjectID != nil {
			return fmt.Errorf("node %q is already owned by a project: %w", nodeLabel, domain.ErrBlocked)
		}
		if err := r.Nodes.SetProject(ctx, node.ID, &project.ID); err != nil {
			return err
		}
		log.G(ctx).WithField("project", projectLabel).WithField("node", nodeLabel).Info("node connected to project")
		return nil
	})
}

// ProjectDetachNode returns a node to the free pool. The node's nics must be
// fully disconnected first.
func (a *API) ProjectDetachNode(ctx context.Context, projectLabel, nodeLabel string) error {
	return a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		project, err := r.Projects.FindByLabel(ctx, projectLabel)
		if err != nil {
			return err
		}
		node, err := r.Nodes.FindByLabel(ctx, nodeLabel)
		if err != nil {
			return err
		}
		if node.ProjectID == nil || *node.ProjectID != project.ID {
			return fmt.Errorf("node %q is not in project %q: %w", nodeLabel, projectLabel, domain.ErrNotFound)
		}
		if err := checkNicsIdle(ctx, r, node); err != nil {
			return err
		}
		if err := r.Nodes.SetProject(ctx, node.ID, nil); err != nil {
			return err
		}
		log.G(ctx).WithField("project", projectLabel).WithField("node", nodeLabel).Info("node detached from project")
		return nil
	})
}

// ListProjects returns every project label
func (a *API) ListProjects(ctx context.Context) ([]string, error) {
	var labels []string
	err := a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		projects, err := r.Projects.FindAll(ctx)
		if err != nil {
			return err
		}
		labels = make([]string, 0, len(projects))
		for _, p := range projects {
			labels = append(labels, p.Label)
		}
		return nil
	})
	return labels, err
}

// ListProjectNodes returns the labels of the nodes a project owns
func (a *API) ListProjectNodes(ctx context.Context, projectLabel string) ([]string, error) {
	var labels []string
	err := a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		project, err := r.Projects.FindByLabel(ctx, projectLabel)
		if err != nil {
			return err
		}
		nodes, err := r.Nodes.FindByProject(ctx, project.ID)
		if err != nil {
			return err
		}
		labels = nodeLabels(nodes)
		return nil
	})
	return labels, err
}

// ListProjectNetworks returns the labels of the networks a project may attach to
func (a *API) ListProjectNetworks(ctx context.Context, projectLabel string) ([]string, error) {
	var labels []string
	err := a.withRepos(ctx, func(_ *sql.Tx, r *repository.Repositories) error {
		project, err := r.Projects.FindByLabel(ctx, projectLabel)
		if err != nil {
			return err
		}
		networks, err := r.Networks.FindVisibleTo(ctx, project.ID)
		if err != nil {
			return err
		}
		labels = make([]string, 0, len(networks))
		for _, n := range networks {
			labels = append(labels, n.Label)
		}
		return nil
	})
	return labels, err
}

func nodeLabels(nodes []domain.Node) []string {
	labels := make([]string, 0, len(nodes))
	for _, n := range nodes {
		labels = append(labels, n.Label)
	}
	return labels
}
