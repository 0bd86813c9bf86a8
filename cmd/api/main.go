package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/quickbasket/api/internal/handlers"
	"github.com/quickbasket/api/internal/jobs"
	"github.com/quickbasket/api/internal/marketplace"
	"github.com/quickbasket/api/internal/platform/config"
	"github.com/quickbasket/api/internal/platform/idempotency"
	"github.com/quickbasket/api/internal/platform/observability"
	"github.com/quickbasket/api/internal/platform/session"
	"github.com/quickbasket/api/internal/repositories/memory"
	"github.com/quickbasket/api/internal/reports"
	"github.com/quickbasket/api/internal/services"
)

const competitorPriceJitter = 5

func main() {
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	sessionManager, err := session.NewManager(cfg.Session.Secret, cfg.Session.Issuer,
		session.WithTokenTTL(cfg.Session.TokenTTL),
	)
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	catalogRepo := memory.NewCatalogStore(memory.SeedProducts(), memory.SeedStores())
	cartRepo := memory.NewCartStore()

	reportStore, err := reports.NewStore(cfg.Aggregation.ReportsDir)
	if err != nil {
		logger.Fatal("failed to initialise report store", zap.Error(err))
	}

	aggregationJob, err := jobs.NewAggregationJob(jobs.AggregationJobDeps{
		SourceDir:   cfg.Aggregation.SourceDir,
		Reports:     reportStore,
		Logger:      logger.Named("aggregation"),
		Concurrency: cfg.Aggregation.Workers,
	})
	if err != nil {
		logger.Fatal("failed to initialise aggregation job", zap.Error(err))
	}

	var scheduler *jobs.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = jobs.NewScheduler(cfg.Scheduler.CronSpec, aggregationJob, logger.Named("scheduler"))
		if err != nil {
			logger.Fatal("failed to initialise scheduler", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	marketplaceClient, err := marketplace.NewClient(cfg.Marketplace.BaseURL,
		marketplace.WithFetchTimeout(cfg.Marketplace.FetchTimeout),
		marketplace.WithRateLimit(rate.Limit(cfg.Marketplace.RatePerSecond), cfg.Marketplace.RateBurst),
		marketplace.WithLogger(logger.Named("marketplace")),
	)
	if err != nil {
		logger.Fatal("failed to initialise marketplace client", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	marketplaceService, err := services.NewMarketplaceService(services.MarketplaceServiceDeps{
		Fetcher: marketplaceClient,
		Jitter:  marketplace.PriceJitter(competitorPriceJitter, rng),
		Logger:  eventLogger(logger.Named("marketplace")),
	})
	if err != nil {
		logger.Fatal("failed to initialise marketplace service", zap.Error(err))
	}

	catalogService, err := services.NewCatalogService(services.CatalogServiceDeps{
		Repository: catalogRepo,
	})
	if err != nil {
		logger.Fatal("failed to initialise catalog service", zap.Error(err))
	}

	cartService, err := services.NewCartService(services.CartServiceDeps{
		Repository: cartRepo,
		Catalog:    catalogRepo,
		Clock:      time.Now,
		Logger:     eventLogger(logger.Named("cart")),
	})
	if err != nil {
		logger.Fatal("failed to initialise cart service", zap.Error(err))
	}

	idempotencyStore := idempotency.NewMemoryStore()
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithLogger(observability.NewPrintfAdapter(logger.Named("idempotency"))),
	)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	var cleanupTicker *time.Ticker
	if cfg.Idempotency.CleanupInterval > 0 {
		cleanupTicker = time.NewTicker(cfg.Idempotency.CleanupInterval)
		cleanupWG.Add(1)
		go func() {
			defer cleanupWG.Done()
			cleanupLogger := logger.Named("idempotency")
			for {
				select {
				case <-cleanupTicker.C:
					runCtx, cancel := context.WithTimeout(cleanupCtx, time.Minute)
					removed, err := idempotencyStore.CleanupExpired(runCtx, time.Now().UTC(), cfg.Idempotency.CleanupBatchSize)
					cancel()
					if err != nil {
						cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
						continue
					}
					if removed > 0 {
						cleanupLogger.Info("idempotency cleanup removed records", zap.Int("count", removed))
					}
				case <-cleanupCtx.Done():
					return
				}
			}
		}()
	}

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	healthHandlers := handlers.NewHealthHandlers(handlers.ReadyCheck{
		Name: "reports",
		Check: func(context.Context) error {
			if _, err := os.Stat(cfg.Aggregation.ReportsDir); err != nil {
				return err
			}
			return nil
		},
	})

	catalogHandlers := handlers.NewCatalogHandlers(catalogService)
	cartHandlers := handlers.NewCartHandlers(cartService)
	marketplaceHandlers := handlers.NewMarketplaceHandlers(marketplaceService, catalogRepo)
	reportHandlers := handlers.NewReportHandlers(reportStore)
	sessionHandlers := handlers.NewSessionHandlers(sessionManager)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCartMiddlewares(
			session.RequireSession(sessionManager),
			idempotencyMiddleware,
		),
		handlers.WithMarketplaceRoutes(marketplaceHandlers.Routes),
		handlers.WithReportRoutes(reportHandlers.Routes),
		handlers.WithSessionRoutes(sessionHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("quickbasket api listening", zap.Time("startedAt", startedAt))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if cleanupTicker != nil {
		cleanupTicker.Stop()
	}
	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func eventLogger(logger *zap.Logger) func(context.Context, string, map[string]any) {
	return func(_ context.Context, event string, fields map[string]any) {
		zFields := make([]zap.Field, 0, len(fields)+1)
		zFields = append(zFields, zap.String("event", event))
		for k, v := range fields {
			zFields = append(zFields, zap.Any(k, v))
		}
		logger.Debug("event log", zFields...)
	}
}
