package shift

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"brewtab/internal/domain"
	"brewtab/internal/dto"
	apperrors "brewtab/internal/errors"
)

const mysqlErrDuplicateEntry = 1062

type ledgerService struct {
	db        TransactionManager
	repo      Repository
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewService(db TransactionManager, repo Repository, logger *zap.Logger, txTimeout time.Duration) Ledger {
	return &ledgerService{
		db:        db,
		repo:      repo,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// RecordApproval appends the order's line items to today's sold-item
// list and bumps the running totals, creating the daily row lazily. The
// orchestrator guarantees at most one call per qualifying transition.
func (s *ledgerService) RecordApproval(ctx context.Context, waiterID uint, order *domain.Order) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return apperrors.NewUnavailableError("store unavailable", err)
	}
	defer tx.Rollback()

	stat, err := s.getOrCreateToday(txCtx, tx, waiterID)
	if err != nil {
		return err
	}

	itemsSold := stat.ItemsSold
	for _, it := range order.Items {
		itemsSold = append(itemsSold, domain.SoldItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
			LineTotal: it.LineTotal(),
		})
	}

	err = s.repo.UpdateAccumulation(txCtx, tx, stat.ID,
		stat.TotalOrders+1,
		stat.TotalRevenue+order.TotalPrice,
		itemsSold,
	)
	if err != nil {
		s.logger.Error("failed to update shift accumulation",
			zap.Uint("waiterId", waiterID), zap.Uint("orderId", order.ID), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit shift accumulation",
			zap.Uint("waiterId", waiterID), zap.Error(err))
		return err
	}

	s.logger.Info("shift statistic recorded",
		zap.Uint("waiterId", waiterID), zap.Uint("orderId", order.ID),
		zap.Float64("orderTotal", order.TotalPrice))
	return nil
}

func (s *ledgerService) getOrCreateToday(ctx context.Context, tx *sql.Tx, waiterID uint) (*domain.ShiftStatistic, error) {
	stat, err := s.repo.FindTodayForUpdate(ctx, tx, waiterID)
	if err == nil {
		return stat, nil
	}
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	if err := s.repo.InsertToday(ctx, tx, waiterID); err != nil {
		// A concurrent approval may have created the row between the
		// read and the insert; the unique (waiter, day) key catches it.
		var mysqlErr *mysql.MySQLError
		if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlErrDuplicateEntry {
			return nil, err
		}
	}

	return s.repo.FindTodayForUpdate(ctx, tx, waiterID)
}

// SnapshotToday reads totals from the live order join and the product
// breakdown from the ledger capture. The capture survives later order
// deletion; the join reflects current order state.
func (s *ledgerService) SnapshotToday(ctx context.Context, waiterID uint) (*dto.ShiftSnapshot, error) {
	totals, err := s.repo.TodayLiveTotals(ctx, waiterID)
	if err != nil {
		return nil, err
	}

	date, err := s.repo.CurrentDate(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &dto.ShiftSnapshot{
		WaiterID:         waiterID,
		Date:             date,
		TotalOrders:      totals.TotalOrders,
		TotalRevenue:     totals.TotalRevenue,
		TotalItems:       totals.TotalItems,
		ProductBreakdown: []dto.ProductSale{},
	}
	if totals.TotalOrders > 0 {
		snapshot.AverageOrderValue = totals.TotalRevenue / float64(totals.TotalOrders)
	}

	stat, err := s.repo.FindToday(ctx, waiterID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return snapshot, nil
		}
		return nil, err
	}

	start := stat.ShiftStart
	snapshot.ShiftStart = &start
	snapshot.ProductBreakdown = breakdown(stat.ItemsSold)

	return snapshot, nil
}

func breakdown(items []domain.SoldItem) []dto.ProductSale {
	byName := make(map[string]*dto.ProductSale)
	var names []string
	for _, it := range items {
		sale, ok := byName[it.Name]
		if !ok {
			sale = &dto.ProductSale{Name: it.Name, UnitPrice: it.UnitPrice}
			byName[it.Name] = sale
			names = append(names, it.Name)
		}
		sale.Quantity += it.Quantity
		sale.Revenue += it.LineTotal
	}

	sort.Strings(names)
	out := make([]dto.ProductSale, 0, len(names))
	for _, name := range names {
		out = append(out, *byName[name])
	}
	return out
}

// ResetShift is the end-of-shift wipe: today's orders by the waiter and
// the daily row are deleted for good.
func (s *ledgerService) ResetShift(ctx context.Context, waiterID uint) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return apperrors.NewUnavailableError("store unavailable", err)
	}
	defer tx.Rollback()

	if err := s.repo.DeleteTodayOrders(txCtx, tx, waiterID); err != nil {
		s.logger.Error("failed to delete shift orders", zap.Uint("waiterId", waiterID), zap.Error(err))
		return err
	}

	if err := s.repo.DeleteToday(txCtx, tx, waiterID); err != nil {
		s.logger.Error("failed to delete shift statistic", zap.Uint("waiterId", waiterID), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit shift reset", zap.Uint("waiterId", waiterID), zap.Error(err))
		return err
	}

	s.logger.Info("shift reset", zap.Uint("waiterId", waiterID))
	return nil
}

func (s *ledgerService) HistoricalStats(ctx context.Context, waiterID uint, days int) ([]domain.ShiftStatistic, error) {
	if days <= 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("days must be positive, got %d", days),
			apperrors.ValidationDetail{Field: "days", Message: "days must be a positive integer"},
		)
	}
	return s.repo.FindRecent(ctx, waiterID, days)
}
