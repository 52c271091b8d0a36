package repository

import (
	"context"
	"database/sql"
)

// Querier is the subset of *sql.DB and *sql.Tx the repositories need, so the
// same repository code runs standalone or inside a datastore transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository defines the basic CRUD operations for any entity type.
// This follows a similar pattern to Spring Data's Repository interface.
type Repository[T any, ID comparable] interface {
	// Save creates or updates an entity
	Save(ctx context.Context, entity T) (T, error)

	// FindByID retrieves an entity by its ID
	// Returns domain.ErrNotFound if the entity doesn't exist
	FindByID(ctx context.Context, id ID) (T, error)

	// FindAll retrieves all entities
	FindAll(ctx context.Context) ([]T, error)

	// DeleteByID deletes an entity by its ID
	// Returns domain.ErrNotFound if the entity doesn't exist
	DeleteByID(ctx context.Context, id ID) error

	// ExistsByID checks if an entity exists by its ID
	ExistsByID(ctx context.Context, id ID) (bool, error)
}

// Repositories bundles every entity repository bound to one Querier.
type Repositories struct {
	Projects    ProjectRepository
	Nodes       NodeRepository
	Nics        NicRepository
	Switches    SwitchRepository
	Ports       PortRepository
	Networks    NetworkRepository
	Attachments AttachmentRepository
	Actions     ActionRepository
	Headnodes   HeadnodeRepository
	Hnics       HnicRepository
}

// New binds all repositories to q, typically a transaction.
func New(q Querier) *Repositories {
	return &Repositories{
		Projects:    NewProjectRepository(q),
		Nodes:       NewNodeRepository(q),
		Nics:        NewNicRepository(q),
		Switches:    NewSwitchRepository(q),
		Ports:       NewPortRepository(q),
		Networks:    NewNetworkRepository(q),
		Attachments: NewAttachmentRepository(q),
		Actions:     NewActionRepository(q),
		Headnodes:   NewHeadnodeRepository(q),
		Hnics:       NewHnicRepository(q),
	}
}
