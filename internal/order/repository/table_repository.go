package repository

import (
	"context"
	"database/sql"
	"fmt"

	"brewtab/internal/domain"
	"brewtab/internal/errors"
)

type MySQLTableRepository struct {
	db *sql.DB
}

func NewMySQLTableRepository(db *sql.DB) *MySQLTableRepository {
	return &MySQLTableRepository{db: db}
}

// FindByIDForUpdate locks the table row so concurrent order creations
// against the same table serialize on its counter. Creations against
// different tables lock different rows and do not block each other.
func (r *MySQLTableRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Table, error) {
	query := `
		SELECT id, number, location, current_order_count, created_at, updated_at
		FROM tables
		WHERE id = ?
		FOR UPDATE
	`

	var t domain.Table
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Number, &t.Location, &t.CurrentOrderCount, &t.CreatedAt, &t.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying table for update: %w", err)
	}

	return &t, nil
}

// UpdateOrderCount writes back the counter; it only ever increases.
func (r *MySQLTableRepository) UpdateOrderCount(ctx context.Context, tx *sql.Tx, id uint, count int) error {
	query := `UPDATE tables SET current_order_count = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, count, id)
	if err != nil {
		return fmt.Errorf("updating table order count: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("table with id %d not found", id))
	}

	return nil
}
