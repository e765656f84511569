// Package app wires configuration, the ledger gateway, the scheduler and
// the HTTP surface into one runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/unw4/TrustChain/internal/api"
	"github.com/unw4/TrustChain/internal/assets"
	"github.com/unw4/TrustChain/internal/config"
	"github.com/unw4/TrustChain/internal/fanout"
	"github.com/unw4/TrustChain/internal/metrics"
	"github.com/unw4/TrustChain/internal/middleware"
	"github.com/unw4/TrustChain/internal/scheduler"
	"github.com/unw4/TrustChain/internal/sui"
	"github.com/unw4/TrustChain/pkg/logger"
)

// Application owns every long-lived component of the service.
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	sched  *scheduler.Scheduler
	store  scheduler.Store
	server *http.Server
}

// New builds the full component graph from configuration. Nothing is
// started yet; call Run.
func New(cfg *config.Config) (*Application, error) {
	log := logger.New(cfg.Logging)
	log = log.WithField("component", "app")

	rpcURL := cfg.Sui.RPCURL
	if rpcURL == "" {
		url, err := sui.FullnodeURL(cfg.Sui.Network)
		if err != nil {
			return nil, err
		}
		rpcURL = url
	}

	client, err := sui.NewClient(sui.ClientConfig{RPCURL: rpcURL})
	if err != nil {
		return nil, fmt.Errorf("ledger client: %w", err)
	}

	signer, err := sui.NewSigner(cfg.Sui.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}

	gateway, err := sui.NewGateway(sui.GatewayConfig{
		Client:    client,
		Signer:    signer,
		PackageID: cfg.Sui.PackageID,
		GasBudget: cfg.Sui.GasBudget,
		Logger:    logger.New(cfg.Logging).WithField("component", "gateway"),
	})
	if err != nil {
		return nil, fmt.Errorf("ledger gateway: %w", err)
	}
	log.WithField("address", gateway.Address()).
		WithField("rpc_url", rpcURL).
		Info("ledger gateway ready")

	store, err := newJobStore(cfg, log)
	if err != nil {
		return nil, err
	}

	hub := fanout.NewHub(fanout.WithLogger(logger.New(cfg.Logging).WithField("component", "fanout")))

	sched, err := scheduler.New(scheduler.Config{
		Store:  store,
		Ledger: gateway,
		Hub:    hub,
		Logger: logger.New(cfg.Logging).WithField("component", "scheduler"),
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	svc := assets.New(gateway, hub, sched, logger.New(cfg.Logging).WithField("component", "assets"))

	router := api.NewRouter(svc, logger.New(cfg.Logging).WithField("component", "api"))
	router.Handle("/ws", api.NewWSHandler(hub, cfg.AllowedOrigin, logger.New(cfg.Logging).WithField("component", "ws")))
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	cors := middleware.NewCORSMiddleware([]string{cfg.AllowedOrigin})
	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst, log)
	handler := cors.Handler(limiter.Handler(middleware.Metrics(router)))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Application{
		cfg:    cfg,
		log:    log,
		sched:  sched,
		store:  store,
		server: server,
	}, nil
}

// newJobStore picks the simulation job store backend. Postgres wins over
// Redis; with neither configured, jobs do not survive a restart.
func newJobStore(cfg *config.Config, log *logger.Logger) (scheduler.Store, error) {
	ctx := context.Background()
	switch {
	case cfg.Store.DatabaseURL != "":
		store, err := scheduler.NewPostgresStore(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("job store: %w", err)
		}
		log.Info("using postgres job store")
		return store, nil
	case cfg.Store.RedisAddr != "":
		store, err := scheduler.NewRedisStore(ctx, cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("job store: %w", err)
		}
		log.Info("using redis job store")
		return store, nil
	default:
		log.Warn("no job store configured, simulation jobs will not survive restarts")
		return scheduler.NewMemoryStore(), nil
	}
}

// Run starts the scheduler and the HTTP server, then blocks until the
// context is cancelled or the server fails. Shutdown is graceful: the
// listener drains first, then the scheduler stops, then the store closes.
func (a *Application) Run(ctx context.Context) error {
	if err := a.sched.Restore(ctx); err != nil {
		return fmt.Errorf("restore simulation jobs: %w", err)
	}
	a.sched.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.log.WithField("addr", a.server.Addr).Info("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		a.shutdown()
		return fmt.Errorf("http server: %w", err)
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.WithError(err).Warn("http server shutdown")
	}
	a.shutdown()
	return nil
}

func (a *Application) shutdown() {
	a.sched.Stop()
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("job store close")
	}
}
