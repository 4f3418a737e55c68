package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-pos/internal/jobs"
	"github.com/odyssey-erp/odyssey-pos/internal/products"
)

// LowStockJob records low-stock alerts raised by quantity reductions.
type LowStockJob struct {
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockJob wires dependencies for the alert handler.
func NewLowStockJob(logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockJob {
	return &LowStockJob{Logger: logger, Metrics: metrics}
}

// Handle processes TaskLowStock tasks.
func (j *LowStockJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("low stock: handler not configured")
	}
	var payload LowStockPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.ProductID == "" {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskLowStock)
	logger := loggerOrDefault(j.Logger).With(
		slog.String("product_id", payload.ProductID),
		slog.Int64("remaining", payload.Remaining),
	)
	if payload.Remaining <= 0 {
		logger.Warn("product sold out", slog.String("name", payload.Name))
	} else {
		logger.Warn("product stock low", slog.String("name", payload.Name))
	}
	j.Metrics.ObserveLowStock(payload.Remaining)
	return tracker.End(nil)
}

// ProductLister reads the current catalog.
type ProductLister interface {
	List(ctx context.Context) ([]products.Product, error)
}

// StockSweepJob walks the catalog and reports every product at or below the
// threshold. It catches stock that was lowered through full replaces, which
// never raise alerts on their own.
type StockSweepJob struct {
	Products  ProductLister
	Threshold int64
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewStockSweepJob wires dependencies for the sweep handler.
func NewStockSweepJob(lister ProductLister, threshold int64, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockSweepJob {
	return &StockSweepJob{
		Products:  lister,
		Threshold: threshold,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes TaskStockSweep tasks.
func (j *StockSweepJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Products == nil {
		return errors.New("stock sweep: handler not configured")
	}
	tracker := j.Metrics.Track(TaskStockSweep)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := loggerOrDefault(j.Logger)
	catalog, err := j.Products.List(ctx)
	if err != nil {
		logger.Error("stock sweep: list products", slog.Any("error", err))
		return err
	}
	low := j.LowItems(catalog)
	for _, p := range low {
		logger.Warn("stock sweep: low stock",
			slog.String("product_id", p.ProductID),
			slog.Int64("remaining", p.Quantity),
		)
		j.Metrics.ObserveLowStock(p.Quantity)
	}
	logger.Info("stock sweep finished",
		slog.Int("scanned", len(catalog)),
		slog.Int("low", len(low)),
		slog.Time("at", j.clock()),
	)
	return nil
}

// LowItems filters catalog down to products at or below the threshold.
func (j *StockSweepJob) LowItems(catalog []products.Product) []products.Product {
	var low []products.Product
	for _, p := range catalog {
		if p.Quantity <= j.Threshold {
			low = append(low, p)
		}
	}
	return low
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
