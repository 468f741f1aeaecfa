package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/sueliob/backend-pizza/internal/config"
	"github.com/sueliob/backend-pizza/internal/cookie"
	"github.com/sueliob/backend-pizza/internal/delivery"
	httptransport "github.com/sueliob/backend-pizza/internal/http"
	"github.com/sueliob/backend-pizza/internal/http/handler"
	httpmiddleware "github.com/sueliob/backend-pizza/internal/http/middleware"
	"github.com/sueliob/backend-pizza/internal/password"
	"github.com/sueliob/backend-pizza/internal/repository"
	"github.com/sueliob/backend-pizza/internal/server"
	"github.com/sueliob/backend-pizza/internal/service"
	"github.com/sueliob/backend-pizza/internal/telemetry"
	"github.com/sueliob/backend-pizza/internal/token"
	"github.com/sueliob/backend-pizza/internal/upload"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newPGXPool,
			newSessionRepository,
			newUserRepository,
			newCatalogRepository,
			newOrderRepository,
			newSettingsRepository,
			newPasswordGateway,
			newCredentialVerifier,
			newUserDirectory,
			newTokenCodec,
			newCookiePolicy,
			newEstimator,
			newUploader,
			service.NewAuthService,
			newHandlers,
			newAuthMiddleware,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, startJanitor, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newPGXPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

func newSessionRepository(pool *pgxpool.Pool) repository.SessionRepository {
	return repository.NewPostgresSessionRepo(pool)
}

func newUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return repository.NewPostgresUserRepo(pool)
}

func newCatalogRepository(pool *pgxpool.Pool) repository.CatalogRepository {
	return repository.NewPostgresCatalogRepo(pool)
}

func newOrderRepository(pool *pgxpool.Pool) repository.OrderRepository {
	return repository.NewPostgresOrderRepo(pool)
}

func newSettingsRepository(pool *pgxpool.Pool) repository.SettingsRepository {
	return repository.NewPostgresSettingsRepo(pool)
}

func newPasswordGateway(pool *pgxpool.Pool) *password.Gateway {
	return password.NewGateway(pool)
}

func newCredentialVerifier(g *password.Gateway) service.CredentialVerifier {
	return g
}

func newUserDirectory(users repository.UserRepository) service.UserDirectory {
	return users
}

func newTokenCodec(cfg config.Config) *token.Codec {
	return token.NewCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL)
}

func newCookiePolicy(cfg config.Config) cookie.Policy {
	return cookie.NewPolicy(cfg.CookieSecure, cfg.CookieSameSite, cfg.CookieDomain, cfg.CookiePath)
}

func newEstimator(cfg config.Config, logger *zap.Logger) *delivery.Estimator {
	var router delivery.Router
	if cfg.GoogleMapsAPIKey != "" {
		router = delivery.NewGoogleMapsRouter(cfg.GoogleMapsAPIKey)
	}
	return delivery.NewEstimator(delivery.DefaultOrigin, router, logger)
}

func newUploader(cfg config.Config) *upload.Cloudinary {
	return upload.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
}

func newHandlers(
	cfg config.Config,
	pool *pgxpool.Pool,
	auth *service.AuthService,
	policy cookie.Policy,
	catalog repository.CatalogRepository,
	orders repository.OrderRepository,
	settings repository.SettingsRepository,
	users repository.UserRepository,
	gateway *password.Gateway,
	estimator *delivery.Estimator,
	uploader *upload.Cloudinary,
	logger *zap.Logger,
) httptransport.Handlers {
	return httptransport.Handlers{
		Health:   handler.NewHealthHandler(pool),
		Auth:     handler.NewAuthHandler(auth, policy, logger),
		Catalog:  handler.NewCatalogHandler(catalog, logger),
		Orders:   handler.NewOrderHandler(orders, catalog, estimator, logger),
		Settings: handler.NewSettingsHandler(settings, logger),
		Upload:   handler.NewUploadHandler(uploader, logger),
		Debug:    handler.NewDebugHandler(users, gateway, cfg.BcryptCost, logger),
	}
}

func newAuthMiddleware(codec *token.Codec) *httpmiddleware.Auth {
	return &httpmiddleware.Auth{Codec: codec}
}

func startJanitor(lc fx.Lifecycle, cfg config.Config, sessions repository.SessionRepository, logger *zap.Logger) {
	janitor := service.NewJanitor(sessions, cfg.JanitorInterval, logger)

	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			go janitor.Run(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
