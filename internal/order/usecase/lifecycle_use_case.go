package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"brewtab/internal/domain"
	"brewtab/internal/dto"
	apperrors "brewtab/internal/errors"
	"brewtab/internal/events"
	"brewtab/internal/inventory"
	"brewtab/internal/order/service"
	"brewtab/internal/shift"
)

type OrderService interface {
	Create(ctx context.Context, tableID uint, items []service.CreateItem, clientTotal float64) (*domain.Order, error)
	Transition(ctx context.Context, orderID uint, next domain.OrderStatus, actingWaiterID *uint) (*domain.Order, domain.OrderStatus, error)
	Delete(ctx context.Context, orderID uint) error
	Get(ctx context.Context, orderID uint) (*domain.Order, error)
	List(ctx context.Context, ownWaiterID *uint) ([]domain.Order, error)
}

type WaiterRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Waiter, error)
}

type Notifier interface {
	Publish(event string, payload interface{})
}

// LifecycleUseCase sequences the order aggregate, inventory ledger,
// shift ledger and event notifier for each externally triggered action.
// The status change is the durable source of truth: ledger and inventory
// failures during a transition are logged, never propagated.
type LifecycleUseCase struct {
	orders           OrderService
	inventory        inventory.Ledger
	shifts           shift.Ledger
	waiters          WaiterRepository
	notifier         Notifier
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewLifecycleUseCase(
	orders OrderService,
	inv inventory.Ledger,
	shifts shift.Ledger,
	waiters WaiterRepository,
	notifier Notifier,
	logger *zap.Logger,
	maxRetryAttempts int,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		orders:           orders,
		inventory:        inv,
		shifts:           shifts,
		waiters:          waiters,
		notifier:         notifier,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *LifecycleUseCase) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error) {
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	items := make([]service.CreateItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.CreateItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}

	var order *domain.Order
	err := uc.withRetry(ctx, "create order", func() error {
		var err error
		order, err = uc.orders.Create(ctx, req.TableID, items, req.TotalPrice)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(events.OrderCreated, dto.NewOrderResponse(order))
	return order, nil
}

func validateCreateRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if req.TableID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "tableId is required",
		})
	}

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	for i, it := range req.Items {
		if it.MenuItemID == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].menuItemId", i),
				Message: "menuItemId is required",
			})
		}
		if it.Quantity <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "quantity must be positive",
			})
		}
	}

	if req.TotalPrice <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "totalPrice",
			Message: "totalPrice must be positive",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// TransitionOrderStatus drives the state machine and applies the
// exactly-once side effects of a qualifying transition.
func (uc *LifecycleUseCase) TransitionOrderStatus(ctx context.Context, orderID uint, status string, actingWaiterID *uint) (*domain.Order, error) {
	next, ok := domain.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("unknown status %q", status),
			apperrors.ValidationDetail{Field: "status", Message: "status must be pending, approved or completed"},
		)
	}

	var (
		order *domain.Order
		prev  domain.OrderStatus
	)
	err := uc.withRetry(ctx, "transition order", func() error {
		var err error
		order, prev, err = uc.orders.Transition(ctx, orderID, next, actingWaiterID)
		return err
	})
	if err != nil {
		return nil, err
	}

	ledgerUpdated := uc.applyShiftAccounting(ctx, order, prev, next)

	if domain.RequiresStockDecrement(prev, next) {
		items := make([]inventory.DecrementItem, len(order.Items))
		for i, it := range order.Items {
			items[i] = inventory.DecrementItem{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
		}
		uc.inventory.Decrement(ctx, items)
	}

	uc.notifier.Publish(events.OrderStatusChanged, dto.NewOrderResponse(order))

	if ledgerUpdated {
		uc.publishShiftSnapshot(ctx, order)
	}

	return order, nil
}

// applyShiftAccounting records the approval when the transition
// qualifies and the order's waiter has the waiter role. The credited
// waiter is the one persisted on the order, so the ledger, the live
// totals join and the snapshot broadcast all agree even when
// reassignment is disabled. Failures are logged and swallowed; the
// status change already committed.
func (uc *LifecycleUseCase) applyShiftAccounting(ctx context.Context, order *domain.Order, prev, next domain.OrderStatus) bool {
	if !domain.IsQualifyingTransition(prev, next) {
		return false
	}

	waiterID := order.WaiterID
	if waiterID == nil {
		return false
	}

	waiter, err := uc.waiters.FindByID(ctx, *waiterID)
	if err != nil {
		uc.logger.Warn("shift accounting skipped, waiter lookup failed",
			zap.Uint("orderId", order.ID), zap.Uintp("waiterId", waiterID), zap.Error(err))
		return false
	}
	if waiter.Role != domain.RoleWaiter {
		return false
	}

	if err := uc.shifts.RecordApproval(ctx, waiter.ID, order); err != nil {
		uc.logger.Error("shift accounting failed, order update stands",
			zap.Uint("orderId", order.ID), zap.Uint("waiterId", waiter.ID), zap.Error(err))
		return false
	}
	return true
}

func (uc *LifecycleUseCase) publishShiftSnapshot(ctx context.Context, order *domain.Order) {
	if order.WaiterID == nil {
		return
	}
	snapshot, err := uc.shifts.SnapshotToday(ctx, *order.WaiterID)
	if err != nil {
		uc.logger.Warn("shift snapshot unavailable for broadcast",
			zap.Uint("waiterId", *order.WaiterID), zap.Error(err))
		return
	}
	uc.notifier.Publish(events.StatsUpdated, snapshot)
}

func (uc *LifecycleUseCase) DeleteOrder(ctx context.Context, orderID uint) error {
	err := uc.withRetry(ctx, "delete order", func() error {
		return uc.orders.Delete(ctx, orderID)
	})
	if err != nil {
		return err
	}

	uc.notifier.Publish(events.OrderDeleted, map[string]uint{"orderId": orderID})
	return nil
}

func (uc *LifecycleUseCase) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	return uc.orders.Get(ctx, orderID)
}

// ListOrders applies the caller's visibility: a waiter sees their own
// orders plus everything pending, an admin sees all.
func (uc *LifecycleUseCase) ListOrders(ctx context.Context, callerID *uint) ([]domain.Order, error) {
	if callerID == nil {
		return uc.orders.List(ctx, nil)
	}

	caller, err := uc.waiters.FindByID(ctx, *callerID)
	if err != nil {
		return nil, err
	}

	if caller.Role == domain.RoleAdmin {
		return uc.orders.List(ctx, nil)
	}
	return uc.orders.List(ctx, &caller.ID)
}

// withRetry retries deadlocks and lock timeouts on the two hot rows
// (table counter, shift ledger) a bounded number of times with jittered
// backoff before surfacing Conflict.
func (uc *LifecycleUseCase) withRetry(ctx context.Context, op string, fn func() error) error {
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	attempts := uc.maxRetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryableError(lastErr) {
			return lastErr
		}

		if attempt < attempts {
			base := backoffs[(attempt-1)%len(backoffs)]
			jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
			uc.logger.Warn("retryable store conflict",
				zap.String("op", op), zap.Int("attempt", attempt), zap.Error(lastErr))
			select {
			case <-time.After(jitter):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return apperrors.NewConflictError(fmt.Sprintf("%s: max retries exceeded: %v", op, lastErr))
}

func isRetryableError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// 1213 deadlock, 1205 lock wait timeout
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	if _, ok := apperrors.IsUnavailableError(err); ok {
		return true
	}
	return false
}
