package shift

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"brewtab/internal/domain"
	"brewtab/internal/dto"
	apperrors "brewtab/internal/errors"
)

func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type mockRepository struct {
	FindTodayForUpdateFunc func(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error)
	InsertTodayFunc        func(ctx context.Context, tx *sql.Tx, waiterID uint) error
	UpdateAccumulationFunc func(ctx context.Context, tx *sql.Tx, id uint, totalOrders int, totalRevenue float64, itemsSold []domain.SoldItem) error
	FindTodayFunc          func(ctx context.Context, waiterID uint) (*domain.ShiftStatistic, error)
	TodayLiveTotalsFunc    func(ctx context.Context, waiterID uint) (*dto.LiveTotals, error)
	CurrentDateFunc        func(ctx context.Context) (string, error)
	DeleteTodayOrdersFunc  func(ctx context.Context, tx *sql.Tx, waiterID uint) error
	DeleteTodayFunc        func(ctx context.Context, tx *sql.Tx, waiterID uint) error
	FindRecentFunc         func(ctx context.Context, waiterID uint, days int) ([]domain.ShiftStatistic, error)
}

func (m *mockRepository) FindTodayForUpdate(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error) {
	return m.FindTodayForUpdateFunc(ctx, tx, waiterID)
}

func (m *mockRepository) InsertToday(ctx context.Context, tx *sql.Tx, waiterID uint) error {
	return m.InsertTodayFunc(ctx, tx, waiterID)
}

func (m *mockRepository) UpdateAccumulation(ctx context.Context, tx *sql.Tx, id uint, totalOrders int, totalRevenue float64, itemsSold []domain.SoldItem) error {
	return m.UpdateAccumulationFunc(ctx, tx, id, totalOrders, totalRevenue, itemsSold)
}

func (m *mockRepository) FindToday(ctx context.Context, waiterID uint) (*domain.ShiftStatistic, error) {
	return m.FindTodayFunc(ctx, waiterID)
}

func (m *mockRepository) TodayLiveTotals(ctx context.Context, waiterID uint) (*dto.LiveTotals, error) {
	return m.TodayLiveTotalsFunc(ctx, waiterID)
}

func (m *mockRepository) CurrentDate(ctx context.Context) (string, error) {
	if m.CurrentDateFunc != nil {
		return m.CurrentDateFunc(ctx)
	}
	return "2026-09-01", nil
}

func (m *mockRepository) DeleteTodayOrders(ctx context.Context, tx *sql.Tx, waiterID uint) error {
	return m.DeleteTodayOrdersFunc(ctx, tx, waiterID)
}

func (m *mockRepository) DeleteToday(ctx context.Context, tx *sql.Tx, waiterID uint) error {
	return m.DeleteTodayFunc(ctx, tx, waiterID)
}

func (m *mockRepository) FindRecent(ctx context.Context, waiterID uint, days int) ([]domain.ShiftStatistic, error) {
	return m.FindRecentFunc(ctx, waiterID, days)
}

func newTestLedger(db TransactionManager, repo Repository) Ledger {
	return NewService(db, repo, zap.NewNop(), 5*time.Second)
}

func approvedOrder() *domain.Order {
	return &domain.Order{
		ID:         7,
		Status:     domain.OrderStatusApproved,
		TotalPrice: 360.0,
		Items: []domain.OrderItem{
			{Name: "Espresso", Price: 120, Quantity: 2},
			{Name: "Fanta", Price: 120, Quantity: 1},
		},
	}
}

// Tests

func TestRecordApproval_AccumulatesExistingRow(t *testing.T) {
	ctx := context.Background()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	existing := &domain.ShiftStatistic{
		ID:           4,
		WaiterID:     3,
		TotalOrders:  2,
		TotalRevenue: 500.0,
		ItemsSold: []domain.SoldItem{
			{Name: "Latte", Quantity: 1, UnitPrice: 150, LineTotal: 150},
		},
	}

	var gotOrders int
	var gotRevenue float64
	var gotItems []domain.SoldItem
	repo := &mockRepository{
		FindTodayForUpdateFunc: func(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error) {
			return existing, nil
		},
		UpdateAccumulationFunc: func(ctx context.Context, tx *sql.Tx, id uint, totalOrders int, totalRevenue float64, itemsSold []domain.SoldItem) error {
			gotOrders = totalOrders
			gotRevenue = totalRevenue
			gotItems = itemsSold
			return nil
		},
	}

	ledger := newTestLedger(db, repo)

	if err := ledger.RecordApproval(ctx, 3, approvedOrder()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotOrders != 3 {
		t.Errorf("expected total orders 3, got %d", gotOrders)
	}

	if gotRevenue != 860.0 {
		t.Errorf("expected total revenue 860.0, got %f", gotRevenue)
	}

	// One prior entry plus the order's two line items, append-only.
	if len(gotItems) != 3 {
		t.Fatalf("expected 3 sold items, got %d", len(gotItems))
	}

	if gotItems[0].Name != "Latte" {
		t.Errorf("expected prior entry preserved first, got %s", gotItems[0].Name)
	}

	if gotItems[1].Name != "Espresso" || gotItems[1].LineTotal != 240.0 {
		t.Errorf("expected espresso line total 240.0, got %+v", gotItems[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations not met: %v", err)
	}
}

func TestRecordApproval_CreatesRowLazily(t *testing.T) {
	ctx := context.Background()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	findCalls := 0
	inserted := false
	repo := &mockRepository{
		FindTodayForUpdateFunc: func(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error) {
			findCalls++
			if findCalls == 1 {
				return nil, apperrors.NewNotFoundError("no shift statistic for today")
			}
			return &domain.ShiftStatistic{ID: 9, WaiterID: waiterID}, nil
		},
		InsertTodayFunc: func(ctx context.Context, tx *sql.Tx, waiterID uint) error {
			inserted = true
			return nil
		},
		UpdateAccumulationFunc: func(ctx context.Context, tx *sql.Tx, id uint, totalOrders int, totalRevenue float64, itemsSold []domain.SoldItem) error {
			if id != 9 {
				t.Errorf("expected accumulation on fresh row 9, got %d", id)
			}
			if totalOrders != 1 {
				t.Errorf("expected first order of the day, got %d", totalOrders)
			}
			return nil
		},
	}

	ledger := newTestLedger(db, repo)

	if err := ledger.RecordApproval(ctx, 3, approvedOrder()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !inserted {
		t.Errorf("expected lazy row creation")
	}
}

func TestRecordApproval_DuplicateEntryRace(t *testing.T) {
	ctx := context.Background()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	findCalls := 0
	repo := &mockRepository{
		FindTodayForUpdateFunc: func(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error) {
			findCalls++
			if findCalls == 1 {
				return nil, apperrors.NewNotFoundError("no shift statistic for today")
			}
			// The concurrent winner's row.
			return &domain.ShiftStatistic{ID: 12, WaiterID: waiterID, TotalOrders: 1, TotalRevenue: 100}, nil
		},
		InsertTodayFunc: func(ctx context.Context, tx *sql.Tx, waiterID uint) error {
			return &mysql.MySQLError{Number: 1062}
		},
		UpdateAccumulationFunc: func(ctx context.Context, tx *sql.Tx, id uint, totalOrders int, totalRevenue float64, itemsSold []domain.SoldItem) error {
			if totalOrders != 2 {
				t.Errorf("expected accumulation on the winner's row, got %d orders", totalOrders)
			}
			return nil
		},
	}

	ledger := newTestLedger(db, repo)

	if err := ledger.RecordApproval(ctx, 3, approvedOrder()); err != nil {
		t.Fatalf("expected duplicate-entry race to be absorbed, got %v", err)
	}
}

func TestSnapshotToday_EmptyDay(t *testing.T) {
	ctx := context.Background()
	db, _ := newTxDB(t)

	repo := &mockRepository{
		TodayLiveTotalsFunc: func(ctx context.Context, waiterID uint) (*dto.LiveTotals, error) {
			return &dto.LiveTotals{}, nil
		},
		FindTodayFunc: func(ctx context.Context, waiterID uint) (*domain.ShiftStatistic, error) {
			return nil, apperrors.NewNotFoundError("no shift statistic for today")
		},
	}

	ledger := newTestLedger(db, repo)

	snapshot, err := ledger.SnapshotToday(ctx, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if snapshot.TotalOrders != 0 || snapshot.TotalRevenue != 0 || snapshot.AverageOrderValue != 0 {
		t.Errorf("expected zeroed snapshot, got %+v", snapshot)
	}

	if snapshot.ShiftStart != nil {
		t.Errorf("expected no shift start without a ledger row")
	}

	if len(snapshot.ProductBreakdown) != 0 {
		t.Errorf("expected empty breakdown, got %d entries", len(snapshot.ProductBreakdown))
	}
}

func TestSnapshotToday_CombinesLiveTotalsAndLedger(t *testing.T) {
	ctx := context.Background()
	db, _ := newTxDB(t)

	start := time.Date(2026, 9, 1, 8, 30, 0, 0, time.UTC)
	repo := &mockRepository{
		TodayLiveTotalsFunc: func(ctx context.Context, waiterID uint) (*dto.LiveTotals, error) {
			return &dto.LiveTotals{TotalOrders: 4, TotalRevenue: 1000.0, TotalItems: 9}, nil
		},
		FindTodayFunc: func(ctx context.Context, waiterID uint) (*domain.ShiftStatistic, error) {
			return &domain.ShiftStatistic{
				ID:         4,
				WaiterID:   waiterID,
				ShiftStart: start,
				ItemsSold: []domain.SoldItem{
					{Name: "Espresso", Quantity: 2, UnitPrice: 120, LineTotal: 240},
					{Name: "Fanta", Quantity: 1, UnitPrice: 120, LineTotal: 120},
					{Name: "Espresso", Quantity: 3, UnitPrice: 120, LineTotal: 360},
				},
			}, nil
		},
	}

	ledger := newTestLedger(db, repo)

	snapshot, err := ledger.SnapshotToday(ctx, 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if snapshot.AverageOrderValue != 250.0 {
		t.Errorf("expected average 250.0, got %f", snapshot.AverageOrderValue)
	}

	if snapshot.ShiftStart == nil || !snapshot.ShiftStart.Equal(start) {
		t.Errorf("expected shift start %v, got %v", start, snapshot.ShiftStart)
	}

	// Same product aggregated across entries, names sorted.
	if len(snapshot.ProductBreakdown) != 2 {
		t.Fatalf("expected 2 breakdown entries, got %d", len(snapshot.ProductBreakdown))
	}

	espresso := snapshot.ProductBreakdown[0]
	if espresso.Name != "Espresso" || espresso.Quantity != 5 || espresso.Revenue != 600.0 {
		t.Errorf("unexpected espresso aggregation: %+v", espresso)
	}

	if snapshot.ProductBreakdown[1].Name != "Fanta" {
		t.Errorf("expected Fanta second, got %s", snapshot.ProductBreakdown[1].Name)
	}
}

func TestResetShift_DeletesOrdersThenRow(t *testing.T) {
	ctx := context.Background()
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var calls []string
	repo := &mockRepository{
		DeleteTodayOrdersFunc: func(ctx context.Context, tx *sql.Tx, waiterID uint) error {
			calls = append(calls, "orders")
			return nil
		},
		DeleteTodayFunc: func(ctx context.Context, tx *sql.Tx, waiterID uint) error {
			calls = append(calls, "stat")
			return nil
		},
	}

	ledger := newTestLedger(db, repo)

	if err := ledger.ResetShift(ctx, 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(calls) != 2 || calls[0] != "orders" || calls[1] != "stat" {
		t.Errorf("expected orders wiped before the daily row, got %v", calls)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations not met: %v", err)
	}
}

func TestHistoricalStats_RejectsNonPositiveDays(t *testing.T) {
	ctx := context.Background()
	db, _ := newTxDB(t)

	ledger := newTestLedger(db, &mockRepository{})

	for _, days := range []int{0, -5} {
		_, err := ledger.HistoricalStats(ctx, 3, days)
		if _, ok := apperrors.IsValidationError(err); !ok {
			t.Errorf("days=%d: expected ValidationError, got %T", days, err)
		}
	}
}

func TestHistoricalStats_PassesWindowThrough(t *testing.T) {
	ctx := context.Background()
	db, _ := newTxDB(t)

	var gotDays int
	repo := &mockRepository{
		FindRecentFunc: func(ctx context.Context, waiterID uint, days int) ([]domain.ShiftStatistic, error) {
			gotDays = days
			return []domain.ShiftStatistic{{ID: 1, WaiterID: waiterID}}, nil
		},
	}

	ledger := newTestLedger(db, repo)

	stats, err := ledger.HistoricalStats(ctx, 3, 7)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotDays != 7 {
		t.Errorf("expected 7-day window, got %d", gotDays)
	}

	if len(stats) != 1 {
		t.Errorf("expected 1 statistic, got %d", len(stats))
	}
}
