// Package app wires the whole storefront together: configuration, session
// store, transport and the domain services.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ElizabetLu/Online-Tech/internal/api"
	"github.com/ElizabetLu/Online-Tech/internal/auth"
	"github.com/ElizabetLu/Online-Tech/internal/cart"
	"github.com/ElizabetLu/Online-Tech/internal/catalog"
	"github.com/ElizabetLu/Online-Tech/internal/checkout"
	"github.com/ElizabetLu/Online-Tech/internal/config"
	"github.com/ElizabetLu/Online-Tech/internal/review"
	"github.com/ElizabetLu/Online-Tech/internal/session"
	"github.com/ElizabetLu/Online-Tech/pkg/httpclient"
)

// App is the assembled storefront client.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Sessions *session.Manager
	API      *api.Client
	Auth     *auth.Service
	Catalog  *catalog.Service
	Cart     *cart.Service
	Review   *review.Service
	Checkout *checkout.Service

	redis *redis.Client
}

// New builds the app from configuration. A redis session backend is pinged
// up front so a dead backend fails loudly at startup instead of on first
// use.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	var store session.Store
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		app.redis = client
		store = session.NewRedisStore(client, cfg.SessionName)
	default:
		fileStore, err := session.NewFileStore(cfg.SessionFile)
		if err != nil {
			return nil, fmt.Errorf("opening session file: %w", err)
		}
		store = fileStore
	}
	app.Sessions = session.NewManager(store, logger)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout

	// Cart and auth calls mutate server state, so a request the server may
	// already have applied must never be reissued. Transport retries are
	// reserved for the idempotent catalog reads.
	baseCfg := httpCfg
	baseCfg.MaxRetries = 0
	base := httpclient.New(baseCfg)

	catalogCfg := httpCfg
	catalogCfg.MaxRetries = cfg.HTTPMaxRetries
	cbCfg := httpclient.DefaultCircuitBreakerConfig("catalog")
	cbCfg.Timeout = cfg.BreakerTimeout
	cbCfg.FailureRatio = cfg.BreakerFailureRatio
	catalogClient := httpclient.NewCircuitBreakerClient(httpclient.New(catalogCfg), cbCfg, logger)

	app.API = api.New(cfg.APIBaseURL, base, catalogClient, app.Sessions, logger)

	app.Auth = auth.NewService(app.API, app.Sessions, logger)
	app.Catalog = catalog.NewService(app.API, app.Sessions, logger)
	app.Cart = cart.NewService(app.API, app.Sessions, logger)
	app.Review = review.NewService(app.API, app.Sessions, logger)
	app.Checkout = checkout.NewService(app.API, app.Cart, app.Sessions, logger)

	logger.InfoContext(ctx, "storefront initialized",
		slog.String("api_base_url", cfg.APIBaseURL),
		slog.String("session_backend", cfg.SessionBackend))
	return app, nil
}

// Close releases backend connections.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
