package inventory

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "brewtab/internal/errors"
)

type Controller struct {
	ledger Ledger
	logger *zap.Logger
}

func NewController(ledger Ledger, logger *zap.Logger) *Controller {
	return &Controller{ledger: ledger, logger: logger}
}

type setStockRequest struct {
	Stock int `json:"stock"`
}

// SetStock is the admin stock-correction endpoint; role enforcement
// happens in the auth layer upstream.
func (c *Controller) SetStock(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "menuItemId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "menuItemId must be a positive integer")
		return
	}

	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	if err := c.ledger.SetStock(r.Context(), uint(id), req.Stock); err != nil {
		if ve, ok := apperrors.IsValidationError(err); ok {
			c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message)
			return
		}
		if _, ok := apperrors.IsNotFoundError(err); ok {
			c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		c.logger.Error("unexpected error", zap.Error(err))
		c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{"menuItemId": id, "stock": req.Stock})
}

func (c *Controller) writeError(w http.ResponseWriter, status int, code, message string) {
	c.writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
