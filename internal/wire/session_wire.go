package wire

import (
	"sportify-backoffice/internal/adaptor"
	"sportify-backoffice/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSession(r chi.Router, sessionHandler *adaptor.SessionHandler, deps Deps, log *zap.Logger) {
	// Coach session proof verification queue
	r.Route("/api/admin/sessions", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Verifier, log, nil))
		r.Use(middleware.Admin(deps.Repo.Admin, log))

		r.Get("/", sessionHandler.ListSessions)
		r.Get("/stream", sessionHandler.StreamSessions)

		r.Post("/{id}/verify", sessionHandler.VerifySession)
		r.Post("/{id}/release", sessionHandler.ReleasePayment)
	})
}
