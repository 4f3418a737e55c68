package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStock reports a product whose stock fell to the alert threshold.
	TaskLowStock = "inventory:low_stock"
	// TaskStockSweep scans the whole catalog for low stock.
	TaskStockSweep = "inventory:stock_sweep"
)

// LowStockPayload describes the product that crossed the threshold.
type LowStockPayload struct {
	ProductID  string    `json:"product_id"`
	Name       string    `json:"name"`
	Remaining  int64     `json:"remaining"`
	DetectedAt time.Time `json:"detected_at"`
}

// NewLowStockTask constructs an Asynq task for a low-stock alert.
func NewLowStockTask(payload LowStockPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStock, data, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// lowStockTaskID keeps one pending alert per product and stock level.
func lowStockTaskID(productID string, remaining int64) string {
	return fmt.Sprintf("low_stock:%s:%d", productID, remaining)
}

// StockSweepPayload carries scheduling metadata.
type StockSweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewStockSweepTask constructs the periodic catalog sweep task.
func NewStockSweepTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(StockSweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockSweep, body, asynq.Queue(QueueDefault)), nil
}
