package order

import (
	"database/sql"

	"go.uber.org/zap"

	"brewtab/internal/config"
	"brewtab/internal/inventory"
	"brewtab/internal/order/controller"
	orderrepo "brewtab/internal/order/repository"
	"brewtab/internal/order/service"
	"brewtab/internal/order/usecase"
	"brewtab/internal/shift"
	waiterrepo "brewtab/internal/waiter/repository"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	logger *zap.Logger,
	notifier usecase.Notifier,
	inv inventory.Ledger,
	shifts shift.Ledger,
) *controller.OrderController {
	tableRepo := orderrepo.NewMySQLTableRepository(db)
	menuRepo := orderrepo.NewMySQLMenuItemRepository(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	waiterRepo := waiterrepo.NewMySQLWaiterRepository(db)

	orderSvc := service.NewOrderService(
		db,
		tableRepo,
		menuRepo,
		orderRepo,
		orderItemRepo,
		logger,
		cfg.Order.TxTimeout,
		cfg.Order.AllowWaiterReassign,
	)

	lifecycle := usecase.NewLifecycleUseCase(
		orderSvc,
		inv,
		shifts,
		waiterRepo,
		notifier,
		logger,
		cfg.Order.MaxRetryAttempts,
	)

	return controller.NewOrderController(lifecycle, logger)
}
