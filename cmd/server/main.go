package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cptblues/team-visio/config"
	"github.com/cptblues/team-visio/internal/auth"
	"github.com/cptblues/team-visio/internal/docstore"
	"github.com/cptblues/team-visio/internal/meet"
	"github.com/cptblues/team-visio/internal/security"
	"github.com/cptblues/team-visio/internal/service"
	"github.com/cptblues/team-visio/internal/toast"
	httpx "github.com/cptblues/team-visio/internal/transport/http"
	"github.com/cptblues/team-visio/internal/transport/ws"
	"github.com/cptblues/team-visio/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting team-visio",
		"env", cfg.Env, "version", cfg.Logging.Version, "degraded", cfg.Degraded())

	ctx := context.Background()

	// --- хранилище: postgres или встроенное при пустом DSN ---
	var (
		store docstore.Store
		pool  *pgxpool.Pool
	)
	if cfg.Degraded() {
		slog.Warn("postgres dsn is empty, falling back to in-memory store")
		store = docstore.NewMemory()
	} else {
		pool, err = docstore.NewPool(ctx, docstore.PoolConfig{
			DSN:             cfg.Postgres.DSN,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()

		pg, err := docstore.NewPostgres(ctx, pool)
		if err != nil {
			log.Fatalf("docstore: %v", err)
		}
		defer pg.Close()
		store = pg
	}

	// --- auth ---
	signer := security.NewJWTSigner(
		[]byte(cfg.Security.JWTSecret),
		cfg.Security.Issuer,
		cfg.Security.Audience,
		cfg.AccessTTL(),
		cfg.ClockSkew(),
	)
	authSvc := auth.NewService(store, signer, security.BcryptConfig{
		Cost:      cfg.Security.BcryptCost,
		MinLength: cfg.Security.MinLength,
	}, cfg.SessionTTL(), nil)

	userStore := auth.NewUserStore(authSvc)
	stopUserStore := userStore.Init()
	defer stopUserStore()

	// --- services ---
	roomSvc := service.NewRoomService(store)
	hallSvc := service.NewHallService(store)
	adminSvc := service.NewAdminService(store, cfg.IsProduction())
	toasts := toast.NewStore()

	// --- realtime + конференции ---
	hub := ws.NewHub()
	bridges := ws.NewBridgeRegistry(hub)

	loader := meet.NewScriptLoader(meet.LoaderConfig{
		Domain:  cfg.Jitsi.Domain,
		Timeout: cfg.ScriptTimeout(),
	})
	meets := meet.NewRegistry(meet.ControllerConfig{
		Domain:     cfg.Jitsi.Domain,
		RoomPrefix: cfg.Jitsi.RoomPrefix,
	}, loader, bridges.Factory)

	wsServer := ws.NewServer(hub, bridges, authSvc, roomSvc, hallSvc, toasts)

	// --- HTTP ---
	handler := httpx.NewHandler(authSvc, roomSvc, hallSvc, adminSvc, meets, toasts)
	router := httpx.NewRouter(httpx.RouterDeps{
		Handler: handler,
		WS:      wsServer,
		Auth:    authSvc,
		HealthFn: func() error {
			if pool == nil {
				return nil
			}
			return docstore.Ping(context.Background(), pool)
		},
	})

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  cfg.IdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
