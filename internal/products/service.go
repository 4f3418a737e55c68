package products

import (
	"context"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// StockNotifier is told when a reduction leaves a product at or below the
// low-stock threshold.
type StockNotifier interface {
	LowStock(ctx context.Context, productID, name string, remaining int64) error
}

// ServiceConfig carries optional collaborators.
type ServiceConfig struct {
	Cache             *Cache
	Notifier          StockNotifier
	LowStockThreshold int64
	Logger            *slog.Logger
}

// Service applies catalog rules on top of the repository.
type Service struct {
	repo      Repository
	cache     *Cache
	notifier  StockNotifier
	threshold int64
	logger    *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		cache:     cfg.Cache,
		notifier:  cfg.Notifier,
		threshold: cfg.LowStockThreshold,
		logger:    logger,
	}
}

// Create adds a product. A taken product_id yields shared.ErrDuplicate.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByProductID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicateProductID(in.ProductID)
	}
	product := &Product{
		ProductID:     in.ProductID,
		Name:          in.Name,
		Type:          in.Type,
		Price:         in.Price,
		PurchasePrice: in.PurchasePrice,
		Quantity:      in.Quantity,
		Rack:          in.Rack,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// List returns every product.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	products, err := s.cache.Products(ctx, s.repo.List)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// Replace overwrites the mutable fields of the product with internal id.
func (s *Service) Replace(ctx context.Context, id string, in ReplaceInput) (*Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, shared.Errorf(shared.ErrValidation, "name is required")
	}
	product, err := s.repo.Replace(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// ReduceQuantity takes qty units out of stock for productID. Stock is never
// driven below zero.
func (s *Service) ReduceQuantity(ctx context.Context, productID string, qty int64) (*Product, error) {
	if qty <= 0 {
		return nil, shared.Errorf(shared.ErrValidation, "quantityToReduce must be greater than 0")
	}
	product, err := s.repo.DecrementQuantity(ctx, productID, qty)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	if s.notifier != nil && product.Quantity <= s.threshold {
		if err := s.notifier.LowStock(ctx, product.ProductID, product.Name, product.Quantity); err != nil {
			s.logger.Warn("low stock notify", slog.String("product_id", product.ProductID), slog.Any("error", err))
		}
	}
	return product, nil
}

// Delete removes the product with internal id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteByProductID removes the product with business key productID.
func (s *Service) DeleteByProductID(ctx context.Context, productID string) error {
	if err := s.repo.DeleteByProductID(ctx, productID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate catalog cache", slog.Any("error", err))
	}
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.ProductID) == "" {
		return shared.Errorf(shared.ErrValidation, "product_id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return shared.Errorf(shared.ErrValidation, "name is required")
	}
	return nil
}
