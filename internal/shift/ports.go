package shift

import (
	"context"
	"database/sql"

	"brewtab/internal/domain"
	"brewtab/internal/dto"
)

// Ledger accumulates per-waiter, per-day statistics and answers the
// shift views built on top of them.
type Ledger interface {
	RecordApproval(ctx context.Context, waiterID uint, order *domain.Order) error
	SnapshotToday(ctx context.Context, waiterID uint) (*dto.ShiftSnapshot, error)
	ResetShift(ctx context.Context, waiterID uint) error
	HistoricalStats(ctx context.Context, waiterID uint, days int) ([]domain.ShiftStatistic, error)
}

type Repository interface {
	FindTodayForUpdate(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error)
	InsertToday(ctx context.Context, tx *sql.Tx, waiterID uint) error
	UpdateAccumulation(ctx context.Context, tx *sql.Tx, id uint, totalOrders int, totalRevenue float64, itemsSold []domain.SoldItem) error
	FindToday(ctx context.Context, waiterID uint) (*domain.ShiftStatistic, error)
	TodayLiveTotals(ctx context.Context, waiterID uint) (*dto.LiveTotals, error)
	CurrentDate(ctx context.Context) (string, error)
	DeleteTodayOrders(ctx context.Context, tx *sql.Tx, waiterID uint) error
	DeleteToday(ctx context.Context, tx *sql.Tx, waiterID uint) error
	FindRecent(ctx context.Context, waiterID uint, days int) ([]domain.ShiftStatistic, error)
}

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
