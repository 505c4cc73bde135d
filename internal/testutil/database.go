package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Tests are skipped
// when no MySQL instance named 'brewtab_test' is reachable on
// localhost:3306.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/brewtab_test?parseTime=true&clientFoundRows=true&multiStatements=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	tables := []string{"order_items", "orders", "waiter_shift_stats", "waiters", "menu_items", "tables"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
	_, _ = db.Exec("SET FOREIGN_KEY_CHECKS = 1")

	db.Close()
}

// SetupTestTables creates the schema used by the integration tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tables (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			number INT NOT NULL UNIQUE,
			location ENUM('indoor', 'outdoor') NOT NULL DEFAULT 'indoor',
			current_order_count INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(100) NOT NULL DEFAULT '',
			price DECIMAL(10,2) NOT NULL,
			is_available TINYINT(1) NOT NULL DEFAULT 1,
			stock INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS waiters (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			display_name VARCHAR(255) NOT NULL,
			role ENUM('admin', 'waiter') NOT NULL DEFAULT 'waiter',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			table_id INT UNSIGNED NOT NULL,
			order_number INT NOT NULL,
			status ENUM('pending', 'approved', 'completed') NOT NULL DEFAULT 'pending',
			total_price DECIMAL(10,2) NOT NULL DEFAULT 0,
			waiter_id INT UNSIGNED NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_table_order_number (table_id, order_number)
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			order_id INT UNSIGNED NOT NULL,
			menu_item_id INT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			quantity INT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_order_items_order (order_id)
		)`,
		`CREATE TABLE IF NOT EXISTS waiter_shift_stats (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			waiter_id INT UNSIGNED NOT NULL,
			stat_date DATE NOT NULL,
			shift_start DATETIME NOT NULL,
			shift_end DATETIME NULL,
			total_orders INT NOT NULL DEFAULT 0,
			total_revenue DECIMAL(10,2) NOT NULL DEFAULT 0,
			items_sold JSON NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_waiter_day (waiter_id, stat_date)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create test table: %v", err)
		}
	}
}
