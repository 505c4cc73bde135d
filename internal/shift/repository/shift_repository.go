package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"brewtab/internal/domain"
	"brewtab/internal/dto"
	"brewtab/internal/errors"
)

type MySQLShiftRepository struct {
	db *sql.DB
}

func NewMySQLShiftRepository(db *sql.DB) *MySQLShiftRepository {
	return &MySQLShiftRepository{db: db}
}

// stat_date is formatted in SQL because parseTime would otherwise hand
// back a midnight timestamp instead of the calendar day.
const statColumns = `id, waiter_id, DATE_FORMAT(stat_date, '%Y-%m-%d'), shift_start, shift_end,
	total_orders, total_revenue, items_sold, created_at, updated_at`

func scanStat(row interface{ Scan(...interface{}) error }) (*domain.ShiftStatistic, error) {
	var stat domain.ShiftStatistic
	var itemsSold []byte
	err := row.Scan(
		&stat.ID, &stat.WaiterID, &stat.Date, &stat.ShiftStart, &stat.ShiftEnd,
		&stat.TotalOrders, &stat.TotalRevenue, &itemsSold,
		&stat.CreatedAt, &stat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(itemsSold) > 0 {
		if err := json.Unmarshal(itemsSold, &stat.ItemsSold); err != nil {
			return nil, fmt.Errorf("decoding items_sold: %w", err)
		}
	}
	return &stat, nil
}

// FindTodayForUpdate locks the waiter's daily row; concurrent approvals
// for the same waiter serialize here, different waiters do not contend.
func (r *MySQLShiftRepository) FindTodayForUpdate(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM waiter_shift_stats
		WHERE waiter_id = ? AND stat_date = CURDATE()
		FOR UPDATE`, statColumns)

	stat, err := scanStat(tx.QueryRowContext(ctx, query, waiterID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no shift statistic for waiter %d today", waiterID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying shift statistic for update: %w", err)
	}
	return stat, nil
}

func (r *MySQLShiftRepository) InsertToday(ctx context.Context, tx *sql.Tx, waiterID uint) error {
	query := `
		INSERT INTO waiter_shift_stats
			(waiter_id, stat_date, shift_start, total_orders, total_revenue, items_sold)
		VALUES (?, CURDATE(), NOW(), 0, 0, JSON_ARRAY())
	`
	if _, err := tx.ExecContext(ctx, query, waiterID); err != nil {
		return fmt.Errorf("inserting shift statistic: %w", err)
	}
	return nil
}

func (r *MySQLShiftRepository) UpdateAccumulation(ctx context.Context, tx *sql.Tx, id uint, totalOrders int, totalRevenue float64, itemsSold []domain.SoldItem) error {
	encoded, err := json.Marshal(itemsSold)
	if err != nil {
		return fmt.Errorf("encoding items_sold: %w", err)
	}

	query := `
		UPDATE waiter_shift_stats
		SET total_orders = ?, total_revenue = ?, items_sold = ?
		WHERE id = ?
	`
	result, err := tx.ExecContext(ctx, query, totalOrders, totalRevenue, encoded, id)
	if err != nil {
		return fmt.Errorf("updating shift statistic: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("shift statistic with id %d not found", id))
	}
	return nil
}

func (r *MySQLShiftRepository) FindToday(ctx context.Context, waiterID uint) (*domain.ShiftStatistic, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM waiter_shift_stats
		WHERE waiter_id = ? AND stat_date = CURDATE()`, statColumns)

	stat, err := scanStat(r.db.QueryRowContext(ctx, query, waiterID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no shift statistic for waiter %d today", waiterID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying shift statistic: %w", err)
	}
	return stat, nil
}

// TodayLiveTotals joins today's approved/completed orders with their
// line items. This is the live view; the ledger row is only used for
// the product breakdown.
func (r *MySQLShiftRepository) TodayLiveTotals(ctx context.Context, waiterID uint) (*dto.LiveTotals, error) {
	query := `
		SELECT COUNT(DISTINCT o.id),
		       COALESCE(SUM(oi.price * oi.quantity), 0),
		       COALESCE(SUM(oi.quantity), 0)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		WHERE o.waiter_id = ?
		  AND o.status IN (?, ?)
		  AND DATE(o.created_at) = CURDATE()
	`

	var totals dto.LiveTotals
	err := r.db.QueryRowContext(ctx, query, waiterID,
		string(domain.OrderStatusApproved), string(domain.OrderStatusCompleted),
	).Scan(&totals.TotalOrders, &totals.TotalRevenue, &totals.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("querying live shift totals: %w", err)
	}

	return &totals, nil
}

func (r *MySQLShiftRepository) CurrentDate(ctx context.Context) (string, error) {
	var date string
	if err := r.db.QueryRowContext(ctx, `SELECT DATE_FORMAT(CURDATE(), '%Y-%m-%d')`).Scan(&date); err != nil {
		return "", fmt.Errorf("querying current date: %w", err)
	}
	return date, nil
}

// DeleteTodayOrders wipes today's orders placed by the waiter, line
// items first. Orders of other waiters and other days stay untouched.
func (r *MySQLShiftRepository) DeleteTodayOrders(ctx context.Context, tx *sql.Tx, waiterID uint) error {
	deleteItems := `
		DELETE oi FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.waiter_id = ? AND DATE(o.created_at) = CURDATE()
	`
	if _, err := tx.ExecContext(ctx, deleteItems, waiterID); err != nil {
		return fmt.Errorf("deleting shift order items: %w", err)
	}

	deleteOrders := `
		DELETE FROM orders
		WHERE waiter_id = ? AND DATE(created_at) = CURDATE()
	`
	if _, err := tx.ExecContext(ctx, deleteOrders, waiterID); err != nil {
		return fmt.Errorf("deleting shift orders: %w", err)
	}

	return nil
}

func (r *MySQLShiftRepository) DeleteToday(ctx context.Context, tx *sql.Tx, waiterID uint) error {
	query := `DELETE FROM waiter_shift_stats WHERE waiter_id = ? AND stat_date = CURDATE()`
	if _, err := tx.ExecContext(ctx, query, waiterID); err != nil {
		return fmt.Errorf("deleting shift statistic: %w", err)
	}
	return nil
}

func (r *MySQLShiftRepository) FindRecent(ctx context.Context, waiterID uint, days int) ([]domain.ShiftStatistic, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM waiter_shift_stats
		WHERE waiter_id = ?
		  AND stat_date >= DATE_SUB(CURDATE(), INTERVAL ? DAY)
		ORDER BY stat_date DESC`, statColumns)

	// days=1 means today only, so the window starts days-1 back.
	rows, err := r.db.QueryContext(ctx, query, waiterID, days-1)
	if err != nil {
		return nil, fmt.Errorf("querying recent shift statistics: %w", err)
	}
	defer rows.Close()

	var stats []domain.ShiftStatistic
	for rows.Next() {
		stat, err := scanStat(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning shift statistic row: %w", err)
		}
		stats = append(stats, *stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shift statistic rows: %w", err)
	}

	return stats, nil
}
