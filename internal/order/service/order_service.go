package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"brewtab/internal/domain"
	apperrors "brewtab/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type TableRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Table, error)
	UpdateOrderCount(ctx context.Context, tx *sql.Tx, id uint, count int) error
}

type MenuItemRepository interface {
	FindByIDs(ctx context.Context, tx *sql.Tx, ids []uint) ([]domain.MenuItem, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, order domain.Order) (uint, error)
	FindByID(ctx context.Context, id uint) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Order, error)
	UpdateStatusAndWaiter(ctx context.Context, tx *sql.Tx, id uint, status domain.OrderStatus, waiterID *uint) error
	Delete(ctx context.Context, tx *sql.Tx, id uint) error
	List(ctx context.Context, ownWaiterID *uint) ([]domain.Order, error)
}

type OrderItemRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, item domain.OrderItem) (uint, error)
	DeleteByOrderID(ctx context.Context, tx *sql.Tx, orderID uint) error
}

type CreateItem struct {
	MenuItemID uint
	Quantity   int
}

// OrderService owns order creation, per-table numbering and status
// transitions. Every mutation happens inside one REPEATABLE READ
// transaction; side effects (inventory, shift ledger, events) belong to
// the orchestrator.
type OrderService struct {
	db            TransactionManager
	tableRepo     TableRepository
	menuRepo      MenuItemRepository
	orderRepo     OrderRepository
	orderItemRepo OrderItemRepository
	logger        *zap.Logger
	txTimeout     time.Duration
	allowReassign bool
}

func NewOrderService(
	db TransactionManager,
	tableRepo TableRepository,
	menuRepo MenuItemRepository,
	orderRepo OrderRepository,
	orderItemRepo OrderItemRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
	allowReassign bool,
) *OrderService {
	return &OrderService{
		db:            db,
		tableRepo:     tableRepo,
		menuRepo:      menuRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		logger:        logger,
		txTimeout:     txTimeout,
		allowReassign: allowReassign,
	}
}

// Create assigns the next per-table order number and inserts the order
// with its line items. The table row lock serializes creations against
// the same table, so numbers come out gap-free and unique.
func (s *OrderService) Create(ctx context.Context, tableID uint, items []CreateItem, clientTotal float64) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, apperrors.NewUnavailableError("store unavailable", err)
	}
	// Rollback is a no-op after commit.
	defer tx.Rollback()

	table, err := s.tableRepo.FindByIDForUpdate(txCtx, tx, tableID)
	if err != nil {
		return nil, err
	}

	lineItems, total, err := s.snapshotItems(txCtx, tx, items)
	if err != nil {
		return nil, err
	}

	// The caller-supplied total is verified, never trusted.
	if math.Abs(total-clientTotal) > 0.005 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("totalPrice %.2f does not match item sum %.2f", clientTotal, total),
			apperrors.ValidationDetail{Field: "totalPrice", Message: "totalPrice must equal the sum of item prices"},
		)
	}

	next := table.CurrentOrderCount + 1

	orderID, err := s.orderRepo.Insert(txCtx, tx, domain.Order{
		TableID:     tableID,
		OrderNumber: next,
		Status:      domain.OrderStatusPending,
		TotalPrice:  total,
	})
	if err != nil {
		s.logger.Error("failed to insert order", zap.Uint("tableId", tableID), zap.Error(err))
		return nil, err
	}

	for _, it := range lineItems {
		it.OrderID = orderID
		if _, err := s.orderItemRepo.Insert(txCtx, tx, it); err != nil {
			s.logger.Error("failed to insert order item", zap.Uint("orderId", orderID), zap.Error(err))
			return nil, err
		}
	}

	if err := s.tableRepo.UpdateOrderCount(txCtx, tx, tableID, next); err != nil {
		s.logger.Error("failed to update table order count", zap.Uint("tableId", tableID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit order creation", zap.Uint("tableId", tableID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("orderId", orderID), zap.Uint("tableId", tableID),
		zap.Int("orderNumber", next), zap.Float64("totalPrice", total))

	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *OrderService) snapshotItems(ctx context.Context, tx *sql.Tx, items []CreateItem) ([]domain.OrderItem, float64, error) {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.MenuItemID
	}

	menuItems, err := s.menuRepo.FindByIDs(ctx, tx, ids)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[uint]domain.MenuItem, len(menuItems))
	for _, m := range menuItems {
		byID[m.ID] = m
	}

	lineItems := make([]domain.OrderItem, 0, len(items))
	total := 0.0
	for i, it := range items {
		m, ok := byID[it.MenuItemID]
		if !ok {
			return nil, 0, apperrors.NewValidationError(
				fmt.Sprintf("menu item %d not found", it.MenuItemID),
				apperrors.ValidationDetail{
					Field:   fmt.Sprintf("items[%d].menuItemId", i),
					Message: "menu item does not exist",
				},
			)
		}
		lineItems = append(lineItems, domain.OrderItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   it.Quantity,
		})
		total += m.Price * float64(it.Quantity)
	}

	return lineItems, total, nil
}

// Transition moves the order through the status state machine and
// returns the previous status so the orchestrator can decide which side
// effects fire.
func (s *OrderService) Transition(ctx context.Context, orderID uint, next domain.OrderStatus, actingWaiterID *uint) (*domain.Order, domain.OrderStatus, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, "", apperrors.NewUnavailableError("store unavailable", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.FindByIDForUpdate(txCtx, tx, orderID)
	if err != nil {
		return nil, "", err
	}

	prev := order.Status
	if !domain.CanTransition(prev, next) {
		return nil, "", apperrors.NewConflictError(
			fmt.Sprintf("cannot transition order from %s to %s", prev, next))
	}

	waiterID := order.WaiterID
	if actingWaiterID != nil && (next == domain.OrderStatusApproved || next == domain.OrderStatusCompleted) {
		if order.WaiterID == nil || s.allowReassign {
			waiterID = actingWaiterID
		}
	}

	if err := s.orderRepo.UpdateStatusAndWaiter(txCtx, tx, orderID, next, waiterID); err != nil {
		s.logger.Error("failed to update order status", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, "", err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit status transition", zap.Uint("orderId", orderID), zap.Error(err))
		return nil, "", err
	}

	s.logger.Info("order status changed",
		zap.Uint("orderId", orderID),
		zap.String("from", string(prev)), zap.String("to", string(next)))

	updated, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	return updated, prev, nil
}

// Delete cascades line items then the order row. It deliberately leaves
// inventory and shift statistics untouched.
func (s *OrderService) Delete(ctx context.Context, orderID uint) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return apperrors.NewUnavailableError("store unavailable", err)
	}
	defer tx.Rollback()

	if _, err := s.orderRepo.FindByIDForUpdate(txCtx, tx, orderID); err != nil {
		return err
	}

	if err := s.orderItemRepo.DeleteByOrderID(txCtx, tx, orderID); err != nil {
		return err
	}

	if err := s.orderRepo.Delete(txCtx, tx, orderID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit order deletion", zap.Uint("orderId", orderID), zap.Error(err))
		return err
	}

	s.logger.Info("order deleted", zap.Uint("orderId", orderID))
	return nil
}

func (s *OrderService) Get(ctx context.Context, orderID uint) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *OrderService) List(ctx context.Context, ownWaiterID *uint) ([]domain.Order, error) {
	return s.orderRepo.List(ctx, ownWaiterID)
}
