package repository

import (
	"context"
	"database/sql"
	"fmt"

	"brewtab/internal/domain"
	"brewtab/internal/errors"
)

// MySQLWaiterRepository is read-only from the core's perspective; staff
// management belongs to the admin surface.
type MySQLWaiterRepository struct {
	db *sql.DB
}

func NewMySQLWaiterRepository(db *sql.DB) *MySQLWaiterRepository {
	return &MySQLWaiterRepository{db: db}
}

const waiterColumns = `id, username, password_hash, display_name, role, created_at, updated_at`

func (r *MySQLWaiterRepository) FindByID(ctx context.Context, id uint) (*domain.Waiter, error) {
	query := fmt.Sprintf(`SELECT %s FROM waiters WHERE id = ?`, waiterColumns)

	var w domain.Waiter
	var role string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.Username, &w.PasswordHash, &w.DisplayName, &role, &w.CreatedAt, &w.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("waiter with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying waiter by id: %w", err)
	}

	w.Role = domain.WaiterRole(role)
	return &w, nil
}

func (r *MySQLWaiterRepository) FindByUsername(ctx context.Context, username string) (*domain.Waiter, error) {
	query := fmt.Sprintf(`SELECT %s FROM waiters WHERE username = ?`, waiterColumns)

	var w domain.Waiter
	var role string
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&w.ID, &w.Username, &w.PasswordHash, &w.DisplayName, &role, &w.CreatedAt, &w.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("waiter %q not found", username))
	}
	if err != nil {
		return nil, fmt.Errorf("querying waiter by username: %w", err)
	}

	w.Role = domain.WaiterRole(role)
	return &w, nil
}
