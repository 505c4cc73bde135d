package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewtab/internal/domain"
	"brewtab/internal/errors"
	"brewtab/internal/testutil"
)

func TestNewMySQLShiftRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLShiftRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration test helpers

func insertWaiter(t *testing.T, db *sql.DB, username string) uint {
	result, err := db.Exec(`
		INSERT INTO waiters (username, password_hash, display_name, role)
		VALUES (?, 'x', ?, 'waiter')
	`, username, username)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return uint(id)
}

func insertTable(t *testing.T, db *sql.DB, number int) uint {
	result, err := db.Exec(`INSERT INTO tables (number, location) VALUES (?, 'indoor')`, number)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return uint(id)
}

func insertOrderWithItem(t *testing.T, db *sql.DB, tableID, waiterID uint, number int, status string, price float64, qty int) uint {
	result, err := db.Exec(`
		INSERT INTO orders (table_id, order_number, status, total_price, waiter_id)
		VALUES (?, ?, ?, ?, ?)
	`, tableID, number, status, price*float64(qty), waiterID)
	require.NoError(t, err)
	orderID, err := result.LastInsertId()
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO order_items (order_id, menu_item_id, name, price, quantity)
		VALUES (?, 10, 'Espresso', ?, ?)
	`, orderID, price, qty)
	require.NoError(t, err)

	return uint(orderID)
}

// Integration Tests

func TestShiftRepository_InsertAndFindToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLShiftRepository(db)
	waiterID := insertWaiter(t, db, "maria")

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.InsertToday(context.Background(), tx, waiterID))

	stat, err := repo.FindTodayForUpdate(context.Background(), tx, waiterID)
	require.NoError(t, err)
	assert.Equal(t, waiterID, stat.WaiterID)
	assert.Equal(t, 0, stat.TotalOrders)
	assert.Empty(t, stat.ItemsSold)
	assert.NotEmpty(t, stat.Date)

	require.NoError(t, tx.Commit())

	found, err := repo.FindToday(context.Background(), waiterID)
	require.NoError(t, err)
	assert.Equal(t, stat.ID, found.ID)
}

func TestShiftRepository_FindToday_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLShiftRepository(db)

	_, err := repo.FindToday(context.Background(), uint(9999))
	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestShiftRepository_UpdateAccumulation_RoundTripsItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLShiftRepository(db)
	waiterID := insertWaiter(t, db, "maria")

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.InsertToday(context.Background(), tx, waiterID))
	stat, err := repo.FindTodayForUpdate(context.Background(), tx, waiterID)
	require.NoError(t, err)

	items := []domain.SoldItem{
		{Name: "Espresso", Quantity: 2, UnitPrice: 120, LineTotal: 240},
		{Name: "Fanta", Quantity: 1, UnitPrice: 120, LineTotal: 120},
	}
	require.NoError(t, repo.UpdateAccumulation(context.Background(), tx, stat.ID, 1, 360.0, items))
	require.NoError(t, tx.Commit())

	found, err := repo.FindToday(context.Background(), waiterID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.TotalOrders)
	assert.Equal(t, 360.0, found.TotalRevenue)
	require.Len(t, found.ItemsSold, 2)
	assert.Equal(t, "Espresso", found.ItemsSold[0].Name)
	assert.Equal(t, 240.0, found.ItemsSold[0].LineTotal)
}

func TestShiftRepository_TodayLiveTotals(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLShiftRepository(db)
	waiterID := insertWaiter(t, db, "maria")
	otherID := insertWaiter(t, db, "pavel")
	tableID := insertTable(t, db, 4)

	insertOrderWithItem(t, db, tableID, waiterID, 1, "approved", 120.0, 2)
	insertOrderWithItem(t, db, tableID, waiterID, 2, "completed", 100.0, 1)
	insertOrderWithItem(t, db, tableID, waiterID, 3, "pending", 500.0, 1) // not counted
	insertOrderWithItem(t, db, tableID, otherID, 4, "approved", 999.0, 1) // other waiter

	totals, err := repo.TodayLiveTotals(context.Background(), waiterID)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.TotalOrders)
	assert.Equal(t, 340.0, totals.TotalRevenue)
	assert.Equal(t, 3, totals.TotalItems)
}

func TestShiftRepository_DeleteTodayOrders_ScopedToWaiter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLShiftRepository(db)
	waiterID := insertWaiter(t, db, "maria")
	otherID := insertWaiter(t, db, "pavel")
	tableID := insertTable(t, db, 4)

	insertOrderWithItem(t, db, tableID, waiterID, 1, "approved", 120.0, 1)
	keptOrder := insertOrderWithItem(t, db, tableID, otherID, 2, "approved", 100.0, 1)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteTodayOrders(context.Background(), tx, waiterID))
	require.NoError(t, repo.DeleteToday(context.Background(), tx, waiterID))
	require.NoError(t, tx.Commit())

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders WHERE waiter_id = ?`, waiterID).Scan(&count))
	assert.Equal(t, 0, count)

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders WHERE id = ?`, keptOrder).Scan(&count))
	assert.Equal(t, 1, count, "other waiter's order must survive the reset")

	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM order_items WHERE order_id = ?`, keptOrder).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestShiftRepository_FindRecent_WindowIncludesToday(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLShiftRepository(db)
	waiterID := insertWaiter(t, db, "maria")

	// Today's row plus one eight days old, outside a 7-day window.
	_, err := db.Exec(`
		INSERT INTO waiter_shift_stats (waiter_id, stat_date, shift_start, total_orders, total_revenue, items_sold)
		VALUES (?, CURDATE(), NOW(), 3, 500.00, JSON_ARRAY()),
		       (?, DATE_SUB(CURDATE(), INTERVAL 8 DAY), NOW(), 9, 900.00, JSON_ARRAY())
	`, waiterID, waiterID)
	require.NoError(t, err)

	stats, err := repo.FindRecent(context.Background(), waiterID, 7)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 3, stats[0].TotalOrders)

	all, err := repo.FindRecent(context.Background(), waiterID, 30)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestShiftRepository_CurrentDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLShiftRepository(db)

	date, err := repo.CurrentDate(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, date)
}
