package products

import (
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// Product is a catalog entry. ID is the storage handle, ProductID the
// business key.
type Product struct {
	ID            string    `json:"_id"`
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	Type          string    `json:"type,omitempty"`
	Price         float64   `json:"price"`
	PurchasePrice float64   `json:"purchasePrice"`
	Quantity      int64     `json:"quantity"`
	Rack          string    `json:"rack,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateInput describes a new product.
type CreateInput struct {
	ProductID     string
	Name          string
	Type          string
	Price         float64
	PurchasePrice float64
	Quantity      int64
	Rack          string
}

// ReplaceInput carries the replaceable fields. A nil PurchasePrice keeps the
// stored value.
type ReplaceInput struct {
	Name          string
	Type          string
	Price         float64
	PurchasePrice *float64
	Quantity      int64
	Rack          string
}

// ErrInsufficientQuantity is returned when a reduction exceeds stock.
var ErrInsufficientQuantity = shared.Errorf(shared.ErrValidation, "insufficient quantity")
