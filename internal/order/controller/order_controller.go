package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"brewtab/internal/domain"
	"brewtab/internal/dto"
	apperrors "brewtab/internal/errors"
)

type LifecycleUseCase interface {
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*domain.Order, error)
	TransitionOrderStatus(ctx context.Context, orderID uint, status string, actingWaiterID *uint) (*domain.Order, error)
	DeleteOrder(ctx context.Context, orderID uint) error
	GetOrder(ctx context.Context, orderID uint) (*domain.Order, error)
	ListOrders(ctx context.Context, callerID *uint) ([]domain.Order, error)
}

type OrderController struct {
	useCase LifecycleUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase LifecycleUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), req)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusCreated, dto.NewOrderResponse(order))
}

func (c *OrderController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseID(w, chi.URLParam(r, "orderId"), "orderId")
	if !ok {
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), orderID)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

func (c *OrderController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var callerID *uint
	if raw := r.URL.Query().Get("waiterId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.writeValidationError(w, "invalid waiterId", apperrors.ValidationDetail{
				Field:   "waiterId",
				Message: "waiterId must be a positive integer",
			})
			return
		}
		v := uint(id)
		callerID = &v
	}

	orders, err := c.useCase.ListOrders(r.Context(), callerID)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderListResponse(orders))
}

func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseID(w, chi.URLParam(r, "orderId"), "orderId")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		c.writeValidationError(w, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.TransitionOrderStatus(r.Context(), orderID, req.Status, req.WaiterID)
	if err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, dto.NewOrderResponse(order))
}

func (c *OrderController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := c.parseID(w, chi.URLParam(r, "orderId"), "orderId")
	if !ok {
		return
	}

	if err := c.useCase.DeleteOrder(r.Context(), orderID); err != nil {
		c.handleUseCaseError(w, err, logger)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (c *OrderController) parseID(w http.ResponseWriter, raw, field string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.writeValidationError(w, "invalid "+field, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (c *OrderController) handleUseCaseError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeValidationError(w, ve.Message, ve.Details...)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		return
	}

	if _, ok := apperrors.IsUnavailableError(err); ok {
		c.writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "store temporarily unavailable")
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *OrderController) writeError(w http.ResponseWriter, status int, code, message string) {
	c.writeJSON(w, status, errorResponse{Error: code, Message: message})
}

type validationErrorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details"`
}

func (c *OrderController) writeValidationError(w http.ResponseWriter, message string, details ...apperrors.ValidationDetail) {
	c.writeJSON(w, http.StatusBadRequest, validationErrorResponse{
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

func (c *OrderController) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
