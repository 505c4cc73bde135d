package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"brewtab/internal/domain"
)

// MySQLMenuItemRepository is the read side of the menu used when
// snapshotting name/price into new line items. Stock mutation lives in
// the inventory package.
type MySQLMenuItemRepository struct {
	db *sql.DB
}

func NewMySQLMenuItemRepository(db *sql.DB) *MySQLMenuItemRepository {
	return &MySQLMenuItemRepository{db: db}
}

func (r *MySQLMenuItemRepository) FindByIDs(ctx context.Context, tx *sql.Tx, ids []uint) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT id, name, category, price, is_available, stock, created_at, updated_at
		FROM menu_items
		WHERE id IN (%s)`,
		strings.Join(placeholders, ", "),
	)

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		err := rows.Scan(
			&m.ID, &m.Name, &m.Category, &m.Price, &m.IsAvailable, &m.Stock,
			&m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu item rows: %w", err)
	}

	return items, nil
}
