package purchases

import (
	"context"
	"log/slog"
	"time"
)

const idempotencyModule = "purchases"

// IdempotencyStore guards against replayed checkouts.
type IdempotencyStore interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// Service records and lists purchases.
type Service struct {
	repo        Repository
	idempotency IdempotencyStore
	logger      *slog.Logger
	now         func() time.Time
}

// NewService builds Service instance. idem may be nil, in which case
// idempotency keys are ignored.
func NewService(repo Repository, idem IdempotencyStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		idempotency: idem,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Record persists a purchase verbatim. Stock is not touched.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Purchase, error) {
	useKey := s.idempotency != nil && in.IdempotencyKey != ""
	if useKey {
		if err := s.idempotency.CheckAndInsert(ctx, in.IdempotencyKey, idempotencyModule); err != nil {
			return nil, err
		}
	}

	purchase := &Purchase{
		Customer: in.Customer,
		Products: in.Products,
		Total:    in.Total,
	}
	if purchase.Products == nil {
		purchase.Products = []any{}
	}
	if in.Date != nil && !in.Date.IsZero() {
		purchase.Date = in.Date.UTC()
	} else {
		purchase.Date = s.now()
	}

	if err := s.repo.Create(ctx, purchase); err != nil {
		if useKey {
			if delErr := s.idempotency.Delete(ctx, in.IdempotencyKey, idempotencyModule); delErr != nil {
				s.logger.Warn("release idempotency key", slog.String("key", in.IdempotencyKey), slog.Any("error", delErr))
			}
		}
		return nil, err
	}
	return purchase, nil
}

// List returns every purchase, newest first.
func (s *Service) List(ctx context.Context) ([]Purchase, error) {
	purchases, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if purchases == nil {
		purchases = []Purchase{}
	}
	return purchases, nil
}
