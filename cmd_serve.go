package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Prashu2024/form-builder-backend/internal/config"
	"github.com/Prashu2024/form-builder-backend/internal/db"
	"github.com/Prashu2024/form-builder-backend/internal/handler"
	"github.com/Prashu2024/form-builder-backend/internal/metrics"
	"github.com/Prashu2024/form-builder-backend/internal/repository"
	"github.com/Prashu2024/form-builder-backend/internal/router"
	"github.com/Prashu2024/form-builder-backend/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	form, err := loadForm(cfg)
	if err != nil {
		return err
	}
	logger.Info("schema loaded", zap.String("title", form.Title), zap.Int("fields", len(form.Fields)))

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Services
	subSvc := service.NewSubmissionService(form, store, m, logger)
	authSvc, err := service.NewAuthService(cfg.AdminEmail, cfg.AdminPass, cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("admin auth: %w", err)
	}

	// Router
	r := router.New(router.Options{
		JWTSecret:  cfg.JWTSecret,
		CORSOrigin: cfg.CORSOrigin,
		Log:        logger,
		Metrics:    m,
		Gatherer:   reg,
	}, router.Handlers{
		Schema:     handler.NewSchemaHandler(form),
		Submission: handler.NewSubmissionHandler(subSvc),
		Admin:      handler.NewAdminHandler(subSvc, logger),
		Auth:       handler.NewAuthHandler(authSvc),
		Health:     handler.NewHealthHandler(subSvc, logger),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.SubmissionStore, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		return repository.OpenSQL(ctx, cfg.Store, cfg.SQLiteDSN)
	case config.StorePostgres:
		return repository.OpenSQL(ctx, cfg.Store, cfg.PostgresDSN)
	case config.StoreOxiDB:
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize, log)
	if err != nil {
		return nil, fmt.Errorf("connect to OxiDB: %w", err)
	}
	log.Info("connected to OxiDB",
		zap.String("host", cfg.OxiDBHost),
		zap.Int("port", cfg.OxiDBPort),
		zap.Int("pool_size", cfg.PoolSize))
	store := repository.NewOxiStore(pool, log)

	// Index builds on a large collection can take minutes. Run them on a
	// dedicated connection so request handling is not blocked behind them.
	go ensureIndexes(ctx, cfg, log, store)
	return store, nil
}

func ensureIndexes(ctx context.Context, cfg *config.Config, log *zap.Logger, fallback *repository.OxiStore) {
	target := fallback
	initPool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, 1, log)
	if err != nil {
		log.Warn("init pool connect failed, using main pool", zap.Error(err))
	} else {
		defer initPool.Close()
		target = repository.NewOxiStore(initPool, log)
	}

	start := time.Now()
	if err := target.EnsureIndexes(ctx); err != nil {
		log.Warn("submission index creation failed", zap.Error(err))
		return
	}
	log.Info("submission indexes ready", zap.Duration("took", time.Since(start).Round(time.Millisecond)))
}
