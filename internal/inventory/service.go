package inventory

import (
	"context"

	"go.uber.org/zap"

	apperrors "brewtab/internal/errors"
)

type ledgerService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Ledger {
	return &ledgerService{repo: repo, logger: logger}
}

// Decrement applies stock = stock - quantity per item, unconditionally;
// stock may go negative as a diagnostic signal. Each entry is applied
// independently: a bad line item is logged and skipped so it never
// blocks the rest of the order.
func (s *ledgerService) Decrement(ctx context.Context, items []DecrementItem) {
	for _, it := range items {
		if err := s.repo.DecrementStock(ctx, it.MenuItemID, it.Quantity); err != nil {
			s.logger.Warn("stock decrement skipped",
				zap.Uint("menuItemId", it.MenuItemID),
				zap.Int("quantity", it.Quantity),
				zap.Error(err))
			continue
		}
		s.logger.Debug("stock decremented",
			zap.Uint("menuItemId", it.MenuItemID),
			zap.Int("quantity", it.Quantity))
	}
}

// SetStock is the manual admin correction path.
func (s *ledgerService) SetStock(ctx context.Context, menuItemID uint, stock int) error {
	if stock < 0 {
		return apperrors.NewValidationError("stock must be non-negative",
			apperrors.ValidationDetail{Field: "stock", Message: "stock must be >= 0"})
	}
	return s.repo.SetStock(ctx, menuItemID, stock)
}
