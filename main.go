package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"sportify-backoffice/cmd"
	"sportify-backoffice/internal/data/repository"
	"sportify-backoffice/internal/wire"
	"sportify-backoffice/pkg/auth"
	"sportify-backoffice/pkg/cache"
	"sportify-backoffice/pkg/database"
	"sportify-backoffice/pkg/mailer"
	"sportify-backoffice/pkg/utils"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Name, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.String("store", config.Store.Driver),
		zap.String("auth", config.Auth.Provider),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var fbApp *firebase.App
	if config.NeedsFirebase() {
		fbApp, err = database.InitFirebase(ctx, config.Firebase)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase", zap.Error(err))
		}
	}

	repo, closeStore, err := openStore(ctx, config, fbApp, logger)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer closeStore()

	verifier, err := newVerifier(ctx, config, fbApp)
	if err != nil {
		logger.Fatal("Failed to initialize token verifier", zap.Error(err))
	}

	deps := wire.Deps{Repo: repo, Verifier: verifier}

	sender, err := mailer.NewSMTPSender(config.Email)
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		logger.Info("SMTP not configured, notification emails disabled")
	case err != nil:
		logger.Fatal("Failed to initialize mailer", zap.Error(err))
	default:
		deps.Sender = sender
	}

	if config.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, config.Redis.URL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		deps.Guard = cache.NewInFlightGuard(rdb, config.Redis.CallbackTTL)
		logger.Info("Redis callback guard enabled")
	}

	// Wire all dependencies
	app := wire.Wiring(deps, config, logger)

	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	app.Service.Notification.Wait()
	logger.Info("Shutdown complete")
}

func openStore(ctx context.Context, config *utils.Config, fbApp *firebase.App, logger *zap.Logger) (*repository.Repository, func(), error) {
	switch config.Store.Driver {
	case "firestore":
		client, err := database.InitFirestore(ctx, fbApp)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Firestore connected successfully")
		return repository.NewFirestoreRepository(client, logger), func() { client.Close() }, nil

	default:
		db, err := database.InitDB(config.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Database connected successfully")
		return repository.NewRepository(db, db, logger), db.Close, nil
	}
}

func newVerifier(ctx context.Context, config *utils.Config, fbApp *firebase.App) (auth.TokenVerifier, error) {
	if config.Auth.Provider == "jwt" {
		return auth.NewJWTVerifier(config.JWT.Secret, config.JWT.Issuer), nil
	}
	return auth.NewFirebaseVerifier(ctx, fbApp)
}
