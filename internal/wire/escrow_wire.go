package wire

import (
	"sportify-backoffice/internal/adaptor"
	"sportify-backoffice/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEscrow(r chi.Router, escrowHandler *adaptor.EscrowHandler, deps Deps, log *zap.Logger) {
	r.Route("/api/admin/payments", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Verifier, log, nil))
		r.Use(middleware.Admin(deps.Repo.Admin, log))

		r.Get("/", escrowHandler.ListPayments)
		r.Get("/stats", escrowHandler.Stats)

		r.Post("/{id}/release", escrowHandler.Release)
		r.Post("/{id}/refund", escrowHandler.Refund)
		r.Post("/{id}/refund-request/approve", escrowHandler.ApproveRefundRequest)
		r.Post("/{id}/refund-request/reject", escrowHandler.RejectRefundRequest)
	})
}
