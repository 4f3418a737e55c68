package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-pos/cmd/pos/cli"
	"github.com/odyssey-erp/odyssey-pos/internal/app"
	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/observability"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-pos/internal/products"
	"github.com/odyssey-erp/odyssey-pos/internal/purchases"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/users"
	"github.com/odyssey-erp/odyssey-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobs(cfg, os.Args[2:]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := app.NewLogger(cfg)

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer stores.Close()

	metrics := observability.NewMetrics()
	jobMetrics := jobmetrics.NewMetrics(metrics.Registerer())

	var (
		redisClient *redis.Client
		catalog     *products.Cache
		idempotency purchases.IdempotencyStore
		notifier    products.StockNotifier
		inspector   jobs.QueueInspector
	)
	redisClient, err = cache.New(ctx, cfg.RedisAddr)
	switch {
	case err == nil:
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		catalog = products.NewCache(redisClient, cfg.CatalogCacheTTL)
		idempotency = shared.NewIdempotencyStore(redisClient, cfg.IdempotencyTTL)

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		jobClient := jobs.NewClient(redisOpts, jobMetrics)
		defer jobClient.Close()
		notifier = jobClient

		queueInspector := asynq.NewInspector(redisOpts)
		defer queueInspector.Close()
		inspector = queueInspector
	case errors.Is(err, cache.ErrDisabled):
		logger.Info("redis disabled, running without cache, idempotency and jobs")
	default:
		logger.Warn("redis unavailable, running without cache, idempotency and jobs", slog.Any("error", err))
	}

	usersService := users.NewService(stores.Users, cfg.BcryptCost)
	productsService := products.NewService(stores.Products, products.ServiceConfig{
		Cache:             catalog,
		Notifier:          notifier,
		LowStockThreshold: cfg.LowStockThreshold,
		Logger:            logger,
	})
	purchasesService := purchases.NewService(stores.Purchases, idempotency, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		UsersHandler:     users.NewHandler(logger, usersService),
		ProductsHandler:  products.NewHandler(logger, productsService),
		PurchasesHandler: purchases.NewHandler(logger, purchasesService),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
		Health: func(r *http.Request) error {
			return stores.Ping(r.Context())
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobs(cfg *app.Config, args []string) int {
	if len(args) == 0 {
		_, _ = os.Stderr.WriteString("usage: pos jobs <trigger|stats> [flags]\n")
		return 2
	}
	fs := flag.NewFlagSet("jobs "+args[0], flag.ContinueOnError)
	task := fs.String("task", "", "task type to enqueue")
	asJSON := fs.Bool("json", false, "print JSON output")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer jobsCLI.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return jobsCLI.JobsCommand(ctx, cli.JobsOptions{
		Action:     args[0],
		Task:       *task,
		JSONOutput: *asJSON,
	})
}
