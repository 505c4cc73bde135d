package inventory

import (
	"database/sql"

	"go.uber.org/zap"

	"brewtab/internal/inventory/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) (Ledger, *Controller) {
	repo := repository.NewMySQLStockRepository(db)
	ledger := NewService(repo, logger)
	return ledger, NewController(ledger, logger)
}
