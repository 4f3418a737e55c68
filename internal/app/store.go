package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/db"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/docstore"
	"github.com/odyssey-erp/odyssey-pos/internal/products"
	"github.com/odyssey-erp/odyssey-pos/internal/purchases"
	"github.com/odyssey-erp/odyssey-pos/internal/users"
)

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Users     users.Repository
	Products  products.Repository
	Purchases purchases.Repository

	ping  func(ctx context.Context) error
	close func()
}

// Ping checks the backend is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	if s == nil || s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend connection.
func (s *Stores) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStores connects to the backend chosen by STORE_DRIVER and prepares its
// indexes or tables.
func OpenStores(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case DriverMongo:
		return openMongo(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	client, err := docstore.New(ctx, docstore.Config{URI: cfg.MongoURI, Database: cfg.MongoDB})
	if err != nil {
		return nil, err
	}
	database := client.Database(cfg.MongoDB)

	userRepo := users.NewMongoRepository(database)
	productRepo := products.NewMongoRepository(database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		_ = docstore.Disconnect(client, 5*time.Second)
		return nil, err
	}
	if err := productRepo.EnsureIndexes(ctx); err != nil {
		_ = docstore.Disconnect(client, 5*time.Second)
		return nil, err
	}
	logger.Info("connected to mongodb", slog.String("database", cfg.MongoDB))

	return &Stores{
		Users:     userRepo,
		Products:  productRepo,
		Purchases: purchases.NewMongoRepository(database),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		close: func() {
			if err := docstore.Disconnect(client, 5*time.Second); err != nil {
				logger.Warn("mongo disconnect", slog.Any("error", err))
			}
		},
	}, nil
}

func openPostgres(ctx context.Context, cfg *Config, logger *slog.Logger) (*Stores, error) {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres")

	return &Stores{
		Users:     users.NewPGRepository(pool),
		Products:  products.NewPGRepository(pool),
		Purchases: purchases.NewPGRepository(pool),
		ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}
