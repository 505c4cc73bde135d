package shift

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"brewtab/internal/dto"
	apperrors "brewtab/internal/errors"
)

const defaultHistoryDays = 7

type Controller struct {
	ledger Ledger
	logger *zap.Logger
}

func NewController(ledger Ledger, logger *zap.Logger) *Controller {
	return &Controller{ledger: ledger, logger: logger}
}

func (c *Controller) Snapshot(w http.ResponseWriter, r *http.Request) {
	waiterID, ok := c.parseWaiterID(w, r)
	if !ok {
		return
	}

	snapshot, err := c.ledger.SnapshotToday(r.Context(), waiterID)
	if err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, snapshot)
}

func (c *Controller) Reset(w http.ResponseWriter, r *http.Request) {
	waiterID, ok := c.parseWaiterID(w, r)
	if !ok {
		return
	}

	if err := c.ledger.ResetShift(r.Context(), waiterID); err != nil {
		c.handleError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (c *Controller) History(w http.ResponseWriter, r *http.Request) {
	waiterID, ok := c.parseWaiterID(w, r)
	if !ok {
		return
	}

	days := defaultHistoryDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "days must be a positive integer")
			return
		}
		days = parsed
	}

	stats, err := c.ledger.HistoricalStats(r.Context(), waiterID, days)
	if err != nil {
		c.handleError(w, err)
		return
	}

	out := make([]dto.ShiftStatResponse, len(stats))
	for i, stat := range stats {
		out[i] = dto.NewShiftStatResponse(stat)
	}
	c.writeJSON(w, http.StatusOK, out)
}

func (c *Controller) parseWaiterID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "waiterId")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "waiterId must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

func (c *Controller) handleError(w http.ResponseWriter, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", ve.Message)
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsUnavailableError(err); ok {
		c.writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "store temporarily unavailable")
		return
	}

	c.logger.Error("unexpected error", zap.Error(err))
	c.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
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
