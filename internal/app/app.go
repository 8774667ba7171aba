// Package app wires the sales dashboard service together: configuration,
// logging, the dataset cache, the filter engine, the HTTP router, and the
// WebSocket hub, plus lifecycle management for all of them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"salespulse/internal/config"
	"salespulse/internal/dataset"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/filter"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
	"salespulse/internal/services"
	httptransport "salespulse/internal/transport/http"
	"salespulse/internal/websocket"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// Application is the composed service.
type Application struct {
	cfg    *config.Config
	logger *slog.Logger
	otel   *infrastructure.OTelProviders

	cache *dataset.Cache
	hub   *websocket.Hub

	dashboard *services.DashboardService
	health    *services.HealthService

	server *http.Server
}

// New builds the application from configuration. The dataset is not loaded
// here: a missing or broken source file must not prevent startup, since the
// watcher keeps retrying and the API degrades to 503 until it heals.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.ServiceVersion = Version
	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	loader := dataset.NewLoader(logger)
	cache := dataset.NewCache(loader, cfg.Dataset.SourceFile, logger)

	engine := filter.NewEngine(filter.Config{
		TopProducts: cfg.Dataset.TopProducts,
	})

	hub := websocket.NewHub(logger)

	dashboard := services.NewDashboardService(cache, engine, logger)
	health := services.NewHealthService(dashboard, Version, logger)

	app := &Application{
		cfg:       cfg,
		logger:    logger,
		otel:      otelProviders,
		cache:     cache,
		hub:       hub,
		dashboard: dashboard,
		health:    health,
	}

	app.server = &http.Server{
		Addr:           cfg.GetListenAddr(),
		Handler:        app.router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return app, nil
}

// router assembles the chi router with the full middleware stack.
func (a *Application) router() chi.Router {
	r := chi.NewRouter()

	errorHandler := apierrors.NewErrorHandler(a.logger, a.cfg.Logging.Development)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(a.logger))
	r.Use(middleware.Recoverer(a.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compress(5))
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	if a.cfg.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: a.cfg.Security.AllowedOrigins,
			Logger:         a.logger,
		}))
	}

	if a.cfg.Security.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			a.cfg.Security.RateLimit.RPS,
			a.cfg.Security.RateLimit.Burst,
			a.logger,
		)
		r.Use(limiter.Handler)
	}

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	dashboardHandler := httptransport.NewDashboardHandler(a.dashboard, errorHandler, a.logger)
	healthHandler := httptransport.NewHealthHandler(a.health)

	r.Route("/api", func(api chi.Router) {
		api.Mount("/dashboard", dashboardHandler.Routes())
		api.Mount("/health", healthHandler.Routes())
		api.Get("/version", a.handleVersion)
	})

	r.Handle("/metrics", httptransport.MetricsHandler())
	r.Get("/ws", a.hub.ServeWS)

	return r
}

func (a *Application) handleVersion(w http.ResponseWriter, r *http.Request) {
	info, _ := a.dashboard.DatasetInfo(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"version": Version,
		"dataset": info,
	})
}

// Run starts the server and blocks until shutdown completes.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.hub.Start()
	defer a.hub.Stop()

	// Warm the cache so the first request is fast. Failure is logged, not
	// fatal: the watcher retries and requests answer 503 meanwhile.
	if table, err := a.cache.Get(ctx); err != nil {
		a.logger.Warn("initial dataset load failed, serving degraded",
			slog.String("source", a.cache.Source()),
			slog.String("error", err.Error()))
	} else {
		a.logger.Info("dataset loaded",
			slog.String("source", table.Source),
			slog.Int("rows", table.Len()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server starting",
			slog.String("addr", a.server.Addr),
			slog.String("version", Version))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.cache.Watch(gctx, a.cfg.Dataset.WatchInterval, func(table *dataset.Table) {
			services.RecordReload(table.Len())
			a.hub.Broadcast(websocket.TypeDatasetReloaded, map[string]interface{}{
				"source":    table.Source,
				"rows":      table.Len(),
				"loaded_at": table.LoadedAt,
			})
		})
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	if err := g.Wait(); err != nil {
		return err
	}

	a.logger.Info("shutdown complete")
	return nil
}

// shutdown drains in-flight requests and releases resources.
func (a *Application) shutdown() error {
	a.logger.Info("shutting down",
		slog.Duration("timeout", a.cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}
	if a.otel != nil {
		if err := a.otel.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("log file close: %w", err))
	}
	return errors.Join(errs...)
}
