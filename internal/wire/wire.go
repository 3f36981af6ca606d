package wire

import (
	"net/http"

	"sportify-backoffice/internal/adaptor"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/internal/usecase"
	"sportify-backoffice/pkg/auth"
	"sportify-backoffice/pkg/cache"
	"sportify-backoffice/pkg/mailer"
	"sportify-backoffice/pkg/middleware"
	"sportify-backoffice/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and the services behind it.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Deps are the infrastructure clients the routes need. Sender and Guard may be nil.
type Deps struct {
	Repo     *repository.Repository
	Verifier auth.TokenVerifier
	Sender   mailer.Sender
	Guard    cache.InFlightGuard
}

// Wiring builds every service and handler and mounts the routes.
func Wiring(deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(deps.Repo, deps.Sender, deps.Guard, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, deps, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.AllowedOrigins))

	wireWebhook(r, handler.Webhook)
	wireStatus(r, handler.Status, deps, logger)
	wireEscrow(r, handler.Escrow, deps, logger)
	wireSession(r, handler.Session, deps, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
