package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"brewtab/internal/inventory"
	ordercontroller "brewtab/internal/order/controller"
	"brewtab/internal/shift"
)

func NewRouter(
	orderCtrl *ordercontroller.OrderController,
	shiftCtrl *shift.Controller,
	inventoryCtrl *inventory.Controller,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderCtrl.Create)
			r.Get("/", orderCtrl.List)
			r.Get("/{orderId}", orderCtrl.Get)
			r.Patch("/{orderId}/status", orderCtrl.UpdateStatus)
			r.Delete("/{orderId}", orderCtrl.Delete)
		})

		r.Route("/waiters/{waiterId}/shift", func(r chi.Router) {
			r.Get("/", shiftCtrl.Snapshot)
			r.Delete("/", shiftCtrl.Reset)
			r.Get("/history", shiftCtrl.History)
		})

		r.Put("/menu/{menuItemId}/stock", inventoryCtrl.SetStock)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}
