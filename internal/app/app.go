package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	pb "github.com/godilite/qa-scorecard/api/v1"
	"github.com/godilite/qa-scorecard/internal/config"
	"github.com/godilite/qa-scorecard/internal/events"
	handler "github.com/godilite/qa-scorecard/internal/grpc"
	"github.com/godilite/qa-scorecard/internal/httpapi"
	"github.com/godilite/qa-scorecard/internal/metrics"
	"github.com/godilite/qa-scorecard/internal/presetcache"
	"github.com/godilite/qa-scorecard/internal/repository"
	"github.com/godilite/qa-scorecard/internal/rubrics"
	"github.com/godilite/qa-scorecard/internal/service"
	"github.com/godilite/qa-scorecard/pkg/cache"
	dbbuilder "github.com/godilite/qa-scorecard/pkg/database"
	grpcsrv "github.com/godilite/qa-scorecard/pkg/grpc/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const (
	shutdownTimeout = 10 * time.Second
	maxRequestBytes = 1 << 20
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	publisher  events.Publisher
	grpcServer *grpcsrv.Server
	httpServer *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	app := &App{logger: logger, publisher: events.NopPublisher{}}
	defer func() {
		if err != nil {
			app.closeResources()
		}
	}()

	catalog, err := rubrics.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("rubric catalog init failed: %w", err)
	}
	logger.Info("Rubric catalog loaded",
		zap.String("path", cfg.CatalogPath),
		zap.Strings("roles", catalog.Roles()))

	dbOpts := []dbbuilder.Option{
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithRetry(3, time.Second),
	}
	if cfg.DBDriver == dbbuilder.DriverSQLite {
		// sqlite allows one writer, and each ":memory:" connection is its own database.
		dbOpts = append(dbOpts, dbbuilder.WithMaxOpenConns(1))
	}
	app.dbPool, err = dbbuilder.New(dbOpts...)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))

	repo := repository.NewTemplateScorecardRepository(app.dbPool, cfg.DBDriver)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("schema init failed: %w", err)
	}

	var storage service.TemplateScorecardRepository = repo
	if cfg.RedisEnabled {
		app.cache, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
			cache.WithNamespace(cfg.RedisNamespace),
		)
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		storage = presetcache.New(repo, app.cache, logger, cfg.CacheTTL)
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	}

	if cfg.NATSURL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATSURL, logger)
		if err != nil {
			return nil, fmt.Errorf("event publisher init failed: %w", err)
		}
		app.publisher = pub
		logger.Info("Event publisher initialized", zap.String("url", cfg.NATSURL))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	scoringService := service.NewScoringService(catalog, storage, logger,
		service.WithPublisher(app.publisher),
		service.WithMetrics(metrics.New(registry)),
	)

	grpcHandlers := handler.NewGRPCHandlers(scoringService, logger)

	app.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(true),
		grpcsrv.WithRecovery(true),
		grpcsrv.WithMetrics(registry),
		grpcsrv.WithMaxRecvMsgSize(maxRequestBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	app.grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterScorecardServer(s, grpcHandlers)
	})

	app.httpServer = &http.Server{
		Addr: net.JoinHostPort("", strconv.Itoa(cfg.HTTPPort)),
		Handler: httpapi.NewRouter(scoringService, logger, httpapi.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			Gatherer:       registry,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.grpcServer.Start()

	httpErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-quit:
	case err := <-httpErr:
		a.logger.Error("HTTP server failed", zap.Error(err))
		runErr = fmt.Errorf("http server: %w", err)
	}

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.Shutdown(ctx)

	_ = a.logger.Sync()
	return runErr
}

// Shutdown stops the servers and releases every resource.
func (a *App) Shutdown(ctx context.Context) {
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}
	if a.grpcServer != nil {
		if err := a.grpcServer.Shutdown(ctx); err != nil {
			a.logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	a.closeResources()

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			a.logger.Warn("shutdown completed but deadline exceeded")
		}
	default:
		a.logger.Info("graceful shutdown completed successfully")
	}
}

func (a *App) closeResources() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}
}
