package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/taskboard/taskboard/internal/app"
	"github.com/taskboard/taskboard/internal/audit"
	audithttp "github.com/taskboard/taskboard/internal/audit/http"
	"github.com/taskboard/taskboard/internal/auth"
	"github.com/taskboard/taskboard/internal/observability"
	"github.com/taskboard/taskboard/internal/orgs"
	"github.com/taskboard/taskboard/internal/platform/cache"
	"github.com/taskboard/taskboard/internal/platform/db"
	"github.com/taskboard/taskboard/internal/rbac"
	"github.com/taskboard/taskboard/internal/tasks"
	"github.com/taskboard/taskboard/jobs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("taskboard exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer dbpool.Close()
	if err := db.EnsureSchema(ctx, dbpool); err != nil {
		return err
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditStore := audit.NewStore(dbpool)

	var (
		sink        audit.Sink = auditStore
		jobsHandler *jobs.Handler
	)
	if cfg.AuditSink == app.AuditSinkQueue {
		queueClient := asynq.NewClient(cache.AsynqOpt(cfg.RedisAddr))
		defer func() {
			if err := queueClient.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
		}()
		inspector := asynq.NewInspector(cache.AsynqOpt(cfg.RedisAddr))
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		sink = audit.NewQueueSink(queueClient)
		jobsHandler = jobs.NewHandler(inspector, logger)
	}
	interceptor := audit.NewInterceptor(sink, logger,
		audit.WithObserver(metrics),
		audit.WithWriteTimeout(cfg.AuditWriteTimeout),
	)

	rbacMiddleware := rbac.Middleware{Logger: logger}

	authService := auth.NewService(
		auth.NewRepository(dbpool),
		auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL),
		auth.NewRevocations(redisClient),
	)
	scopes := orgs.NewResolver(orgs.NewRepository(dbpool))
	taskService := tasks.NewService(tasks.NewRepository(dbpool), scopes)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		PrincipalSupplier:  auth.Supplier(authService, logger),
		Interceptor:        interceptor,
		AuthHandler:        auth.NewHandler(logger, authService, rbacMiddleware, cfg.LoginRateLimit),
		TasksHandler:       tasks.NewHandler(logger, taskService, rbacMiddleware),
		AuditHandler:       audithttp.NewHandler(logger, audit.NewService(auditStore), rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(rbacMiddleware),
		JobsHandler:        jobsHandler,
		HealthCheck: func(ctx context.Context) error {
			if err := dbpool.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("audit_sink", cfg.AuditSink),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown", slog.Any("error", err))
		}
		if err := interceptor.Wait(shutdownCtx); err != nil {
			logger.Warn("pending audit writes abandoned", slog.Any("error", err))
		}
		return nil
	})
	return g.Wait()
}
