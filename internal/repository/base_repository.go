package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/jbweber/homelab/hil/internal/domain"
)

// scanner is implemented by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// baseRepository provides the generic lookups shared by every entity
// repository; concrete repositories embed it and add their own writes.
type baseRepository[T any] struct {
	q       Querier
	table   string
	columns string
	entity  string
	scan    func(scanner) (T, error)
}

// newBaseRepository creates a base repository for table, naming the entity
// after T in error messages.
func newBaseRepository[T any](q Querier, table, columns string, scan func(scanner) (T, error)) baseRepository[T] {
	var zero T
	return baseRepository[T]{
		q:       q,
		table:   table,
		columns: columns,
		entity:  strings.ToLower(reflect.TypeOf(zero).Name()),
		scan:    scan,
	}
}

// findOne returns the single row matching where, or domain.ErrNotFound
func (r *baseRepository[T]) findOne(ctx context.Context, desc, where string, args ...any) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", r.columns, r.table, where)
	entity, err := r.scan(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		var zero T
		if isNotFoundError(err) {
			return zero, fmt.Errorf("%s %s: %w", r.entity, desc, domain.ErrNotFound)
		}
		return zero, fmt.Errorf("failed to find %s: %v: %w", r.entity, err, domain.ErrServer)
	}
	return entity, nil
}

// findMany returns all rows matching where, ordered by id
func (r *baseRepository[T]) findMany(ctx context.Context, where string, args ...any) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", r.columns, r.table)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find %ss: %v: %w", r.entity, err, domain.ErrServer)
	}
	defer rows.Close()

	var entities []T
	for rows.Next() {
		entity, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %v: %w", r.entity, err, domain.ErrServer)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %ss: %v: %w", r.entity, err, domain.ErrServer)
	}

	return entities, nil
}

// FindByID retrieves an entity by its ID
func (r *baseRepository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	return r.findOne(ctx, fmt.Sprintf("with ID %d", id), "id = ?", id)
}

// FindAll retrieves all entities
func (r *baseRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	return r.findMany(ctx, "")
}

// DeleteByID deletes an entity by its ID
func (r *baseRepository[T]) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", r.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %v: %w", r.entity, err, domain.ErrServer)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v: %w", err, domain.ErrServer)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s with ID %d: %w", r.entity, id, domain.ErrNotFound)
	}

	return nil
}

// ExistsByID checks if an entity exists by its ID
func (r *baseRepository[T]) ExistsByID(ctx context.Context, id int64) (bool, error) {
	n, err := r.count(ctx, "id = ?", id)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// count returns the number of rows matching where
func (r *baseRepository[T]) count(ctx context.Context, where string, args ...any) (int, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.table, where)
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %ss: %v: %w", r.entity, err, domain.ErrServer)
	}
	return n, nil
}

// insert runs an INSERT and returns the new row id
func (r *baseRepository[T]) insert(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %v: %w", r.entity, err, domain.ErrServer)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get %s ID: %v: %w", r.entity, err, domain.ErrServer)
	}
	return id, nil
}

// exec runs an UPDATE or DELETE that must touch the row with the given id
func (r *baseRepository[T]) exec(ctx context.Context, id int64, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %v: %w", r.entity, err, domain.ErrServer)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v: %w", err, domain.ErrServer)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s with ID %d: %w", r.entity, id, domain.ErrNotFound)
	}
	return nil
}

// Helper function to check if an error is a "not found" error from the database
func isNotFoundError(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// nullInt64 converts an optional id to a driver value
func nullInt64(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// ptrInt64 converts a scanned nullable id back to an optional id
func ptrInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
