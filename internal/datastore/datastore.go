package datastore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbweber/homelab/hil/internal/domain"
	"github.com/jbweber/homelab/hil/internal/log"
	"github.com/jbweber/homelab/hil/internal/migrations"
	_ "modernc.org/sqlite"
)

// Datastore owns the database handle. Every mutation of the resource model
// runs inside WithTx so invariant checks and writes commit together.
type Datastore struct {
	DB *sql.DB
}

// DSN builds a sqlite DSN for path with the per-connection pragmas every
// pooled connection needs.
func DSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// New opens the sqlite database at path and runs migrations.
func New(path string) (*Datastore, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Datastore{DB: db}, nil
}

// FromDB wraps an already configured and migrated database.
func FromDB(db *sql.DB) *Datastore {
	return &Datastore{DB: db}
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise, leaving the model unchanged.
// Storage failures are reported as domain.ErrServer.
func (ds *Datastore) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := ds.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v: %w", err, domain.ErrServer)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			log.G(ctx).WithError(rbErr).Error("failed to roll back transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v: %w", err, domain.ErrServer)
	}
	return nil
}

// Close closes the underlying database.
func (ds *Datastore) Close() error {
	return ds.DB.Close()
}
