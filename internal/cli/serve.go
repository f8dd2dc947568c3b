package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CursorAPI/internal/auth"
	"CursorAPI/internal/db"
	"CursorAPI/internal/handler"
	"CursorAPI/internal/logger"
	"CursorAPI/internal/model"
	"CursorAPI/internal/resolver"
	"CursorAPI/internal/router"

	"github.com/spf13/cobra"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *RootOptions) error {
	cfg := opts.Config

	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		logger.Error("db_init_failed", map[string]any{"driver": cfg.DBDriver, "error": err.Error()})
		return err
	}
	defer closeBackend()
	logger.Info("db_connected", map[string]any{"driver": cfg.DBDriver})

	db.InitRedis(cfg.RedisAddr)
	if err := db.PingRedis(ctx); err != nil {
		logger.Warn("redis_unavailable", map[string]any{"error": err.Error()})
		_ = db.CloseRedis()
	}
	defer func() { _ = db.CloseRedis() }()

	if err := model.InitRegistry(cfg.ResourcesDir); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		return err
	}
	logger.Info("resources_initialized", map[string]any{"routes": model.Routes()})

	catalogs := model.NewCatalogs(backend, db.RDB, cfg.CatalogCache.TTL, cfg.CatalogCache.MaxBytes)
	deps := router.Deps{
		API: handler.New(resolver.New(backend, catalogs)),
		Health: func(r *http.Request) error {
			return backend.Ping(r.Context())
		},
	}
	if cfg.Auth.Enabled {
		v, err := auth.NewJWTValidator(cfg.Auth.JWT)
		if err != nil {
			logger.Error("auth_init_failed", map[string]any{"error": err.Error()})
			return err
		}
		deps.Validator = v
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewMux(cfg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_start", map[string]any{"port": cfg.Port})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_error", map[string]any{"error": err.Error()})
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("server_shutdown", nil)
	return srv.Shutdown(shutdownCtx)
}
