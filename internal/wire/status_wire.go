package wire

import (
	"sportify-backoffice/internal/adaptor"
	"sportify-backoffice/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireStatus(r chi.Router, statusHandler *adaptor.StatusHandler, deps Deps, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Verifier, log, statusHandler.Unauthenticated))

		// POST /api/payments/status - manual payment status check by the booking owner
		r.Post("/api/payments/status", statusHandler.CheckPaymentStatus)
	})
}
