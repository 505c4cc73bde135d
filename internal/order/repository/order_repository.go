package repository

import (
	"context"
	"database/sql"
	"fmt"

	"brewtab/internal/domain"
	"brewtab/internal/errors"
)

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error) {
	query := `
		INSERT INTO orders (table_id, order_number, status, total_price, waiter_id)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		order.TableID, order.OrderNumber, string(order.Status), order.TotalPrice, order.WaiterID,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

const orderSelect = `
	SELECT o.id, o.table_id, t.number, o.order_number, o.status, o.total_price,
	       o.waiter_id, w.display_name, o.created_at, o.updated_at
	FROM orders o
	JOIN tables t ON t.id = o.table_id
	LEFT JOIN waiters w ON w.id = o.waiter_id
`

func scanOrder(row interface{ Scan(...interface{}) error }) (*domain.Order, error) {
	var order domain.Order
	var status string
	err := row.Scan(
		&order.ID, &order.TableID, &order.TableNumber, &order.OrderNumber,
		&status, &order.TotalPrice, &order.WaiterID, &order.WaiterName,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	return &order, nil
}

// FindByID returns the fully materialized order: table number, waiter
// name and line items, ready for display and broadcast.
func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// FindByIDForUpdate locks the bare order row for a status transition.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error) {
	query := `
		SELECT id, table_id, order_number, status, total_price, waiter_id, created_at, updated_at
		FROM orders
		WHERE id = ?
		FOR UPDATE
	`

	var order domain.Order
	var status string
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&order.ID, &order.TableID, &order.OrderNumber, &status,
		&order.TotalPrice, &order.WaiterID, &order.CreatedAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order for update: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	return &order, nil
}

func (r *MySQLOrderRepository) UpdateStatusAndWaiter(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus, waiterID *uint) error {
	query := `UPDATE orders SET status = ?, waiter_id = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, string(status), waiterID, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

func (r *MySQLOrderRepository) Delete(ctx context.Context, tx *sql.Tx, id uint) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %d not found", id))
	}

	return nil
}

// List returns orders newest first. With a waiter filter it returns that
// waiter's own orders plus every pending order; without one it is the
// unfiltered admin view.
func (r *MySQLOrderRepository) List(ctx context.Context, ownWaiterID *uint) ([]domain.Order, error) {
	query := orderSelect
	var args []interface{}
	if ownWaiterID != nil {
		query += ` WHERE o.status = ? OR o.waiter_id = ?`
		args = append(args, string(domain.OrderStatusPending), *ownWaiterID)
	}
	query += ` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	for i := range orders {
		items, err := r.findItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *MySQLOrderRepository) findItems(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	query := `
		SELECT id, order_id, menu_item_id, name, price, quantity, created_at
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}
