package shift

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"brewtab/internal/shift/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger, txTimeout time.Duration) (Ledger, *Controller) {
	repo := repository.NewMySQLShiftRepository(db)
	ledger := NewService(db, repo, logger, txTimeout)
	return ledger, NewController(ledger, logger)
}
