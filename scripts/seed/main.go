package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/odyssey-erp/odyssey-pos/internal/app"
	"github.com/odyssey-erp/odyssey-pos/internal/products"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
	"github.com/odyssey-erp/odyssey-pos/internal/users"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg, app.NewLogger(cfg))
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer stores.Close()

	fmt.Println("→ Seeding users...")
	if err := seedUsers(ctx, users.NewService(stores.Users, cfg.BcryptCost)); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	fmt.Println("→ Seeding products...")
	if err := seedProducts(ctx, products.NewService(stores.Products, products.ServiceConfig{})); err != nil {
		log.Fatalf("seed products: %v", err)
	}

	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

// Existing records are skipped so the seed can be rerun.
func seedUsers(ctx context.Context, svc *users.Service) error {
	seeds := []users.SignupInput{
		{Username: "admin", Email: "admin@odyssey.local", Password: "admin123", Phone: "0800000001"},
		{Username: "cashier", Email: "cashier@odyssey.local", Password: "cashier123", Phone: "0800000002"},
	}
	for _, in := range seeds {
		if _, err := svc.Register(ctx, in); err != nil && !errors.Is(err, shared.ErrDuplicate) {
			return err
		}
	}
	return nil
}

func seedProducts(ctx context.Context, svc *products.Service) error {
	seeds := []products.CreateInput{
		{ProductID: "BRG-001", Name: "Beras 5kg", Type: "grocery", Price: 72000, PurchasePrice: 65000, Quantity: 40, Rack: "A1"},
		{ProductID: "MNY-002", Name: "Minyak Goreng 2L", Type: "grocery", Price: 36000, PurchasePrice: 31000, Quantity: 25, Rack: "A2"},
		{ProductID: "SBN-003", Name: "Sabun Mandi", Type: "toiletries", Price: 4500, PurchasePrice: 3200, Quantity: 120, Rack: "C4"},
		{ProductID: "KPI-004", Name: "Kopi Bubuk 200g", Type: "beverage", Price: 18500, PurchasePrice: 14000, Quantity: 4, Rack: "B1"},
	}
	for _, in := range seeds {
		if _, err := svc.Create(ctx, in); err != nil && !errors.Is(err, shared.ErrDuplicate) {
			return err
		}
	}
	return nil
}
