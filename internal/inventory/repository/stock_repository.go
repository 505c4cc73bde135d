package repository

import (
	"context"
	"database/sql"
	"fmt"

	"brewtab/internal/errors"
)

type MySQLStockRepository struct {
	db *sql.DB
}

func NewMySQLStockRepository(db *sql.DB) *MySQLStockRepository {
	return &MySQLStockRepository{db: db}
}

// DecrementStock is a single atomic read-modify-write in the database;
// no clamping, negative stock is allowed.
func (r *MySQLStockRepository) DecrementStock(ctx context.Context, menuItemID uint, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET stock = stock - ? WHERE id = ?`, quantity, menuItemID)
	if err != nil {
		return fmt.Errorf("decrementing stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", menuItemID))
	}

	return nil
}

func (r *MySQLStockRepository) SetStock(ctx context.Context, menuItemID uint, stock int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET stock = ? WHERE id = ?`, stock, menuItemID)
	if err != nil {
		return fmt.Errorf("setting stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", menuItemID))
	}

	return nil
}
