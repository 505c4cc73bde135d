package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewtab/internal/errors"
	"brewtab/internal/testutil"
)

func TestNewMySQLStockRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLStockRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func insertMenuItem(t *testing.T, db *sql.DB, name string, stock int) uint {
	result, err := db.Exec(`
		INSERT INTO menu_items (name, category, price, is_available, stock)
		VALUES (?, 'coffee', 120.00, 1, ?)
	`, name, stock)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return uint(id)
}

func currentStock(t *testing.T, db *sql.DB, id uint) int {
	var stock int
	require.NoError(t, db.QueryRow(`SELECT stock FROM menu_items WHERE id = ?`, id).Scan(&stock))
	return stock
}

func TestStockRepository_DecrementStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLStockRepository(db)
	id := insertMenuItem(t, db, "Espresso", 10)

	require.NoError(t, repo.DecrementStock(context.Background(), id, 3))
	assert.Equal(t, 7, currentStock(t, db, id))
}

func TestStockRepository_DecrementStock_GoesNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLStockRepository(db)
	id := insertMenuItem(t, db, "Espresso", 1)

	// No clamping: oversold stock stays visible as a negative number.
	require.NoError(t, repo.DecrementStock(context.Background(), id, 5))
	assert.Equal(t, -4, currentStock(t, db, id))
}

func TestStockRepository_DecrementStock_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLStockRepository(db)

	err := repo.DecrementStock(context.Background(), uint(9999), 1)
	nfe, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestStockRepository_SetStock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLStockRepository(db)
	id := insertMenuItem(t, db, "Espresso", -4)

	require.NoError(t, repo.SetStock(context.Background(), id, 50))
	assert.Equal(t, 50, currentStock(t, db, id))
}
