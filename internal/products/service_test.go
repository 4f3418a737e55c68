package products

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

type memoryRepo struct {
	mu       sync.Mutex
	products []Product
	nextID   int
	lists    int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{}
}

func (r *memoryRepo) Create(ctx context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ProductID == product.ProductID {
			return duplicateProductID(product.ProductID)
		}
	}
	r.nextID++
	now := time.Now().UTC()
	product.ID = strconv.Itoa(r.nextID)
	product.CreatedAt = now
	product.UpdatedAt = now
	r.products = append(r.products, *product)
	return nil
}

func (r *memoryRepo) ExistsByProductID(ctx context.Context, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexBy(func(p Product) bool { return p.ProductID == productID }) >= 0, nil
}

func (r *memoryRepo) List(ctx context.Context) ([]Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := make([]Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *memoryRepo) Replace(ctx context.Context, id string, in ReplaceInput) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexBy(func(p Product) bool { return p.ID == id })
	if idx < 0 {
		return nil, shared.ErrNotFound
	}
	p := &r.products[idx]
	p.Name = in.Name
	p.Type = in.Type
	p.Price = in.Price
	if in.PurchasePrice != nil {
		p.PurchasePrice = *in.PurchasePrice
	}
	p.Quantity = in.Quantity
	p.Rack = in.Rack
	p.UpdatedAt = time.Now().UTC()
	out := *p
	return &out, nil
}

func (r *memoryRepo) DecrementQuantity(ctx context.Context, productID string, qty int64) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexBy(func(p Product) bool { return p.ProductID == productID })
	if idx < 0 {
		return nil, shared.ErrNotFound
	}
	p := &r.products[idx]
	if p.Quantity < qty {
		return nil, ErrInsufficientQuantity
	}
	p.Quantity -= qty
	out := *p
	return &out, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	return r.remove(func(p Product) bool { return p.ID == id })
}

func (r *memoryRepo) DeleteByProductID(ctx context.Context, productID string) error {
	return r.remove(func(p Product) bool { return p.ProductID == productID })
}

func (r *memoryRepo) remove(match func(Product) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexBy(match)
	if idx < 0 {
		return shared.ErrNotFound
	}
	r.products = append(r.products[:idx], r.products[idx+1:]...)
	return nil
}

func (r *memoryRepo) indexBy(match func(Product) bool) int {
	for i, p := range r.products {
		if match(p) {
			return i
		}
	}
	return -1
}

type lowStockCall struct {
	productID string
	remaining int64
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []lowStockCall
	err   error
}

func (n *recordingNotifier) LowStock(ctx context.Context, productID, name string, remaining int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, lowStockCall{productID: productID, remaining: remaining})
	return n.err
}

func seed(t *testing.T, svc *Service, productID string, qty int64) *Product {
	t.Helper()
	p, err := svc.Create(context.Background(), CreateInput{
		ProductID:     productID,
		Name:          "Item " + productID,
		Price:         12.5,
		PurchasePrice: 8,
		Quantity:      qty,
	})
	require.NoError(t, err)
	return p
}

func TestCreateRejectsDuplicateProductID(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, ServiceConfig{})
	seed(t, svc, "P1", 5)

	_, err := svc.Create(context.Background(), CreateInput{ProductID: "P1", Name: "Other", Quantity: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrDuplicate))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreateRequiresKeyAndName(t *testing.T) {
	svc := NewService(newMemoryRepo(), ServiceConfig{})

	_, err := svc.Create(context.Background(), CreateInput{Name: "x"})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = svc.Create(context.Background(), CreateInput{ProductID: "P1"})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc := NewService(newMemoryRepo(), ServiceConfig{})
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestReduceQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), ServiceConfig{})
	seed(t, svc, "P1", 10)

	p, err := svc.ReduceQuantity(ctx, "P1", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Quantity)

	_, err = svc.ReduceQuantity(ctx, "P1", 1)
	require.ErrorIs(t, err, ErrInsufficientQuantity)

	_, err = svc.ReduceQuantity(ctx, "missing", 1)
	require.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.ReduceQuantity(ctx, "P1", 0)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestReduceQuantityConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := NewService(repo, ServiceConfig{})
	seed(t, svc, "P1", 10)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ReduceQuantity(ctx, "P1", 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(0), list[0].Quantity)
}

func TestReduceQuantityNotifiesAtThreshold(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	svc := NewService(newMemoryRepo(), ServiceConfig{Notifier: notifier, LowStockThreshold: 3})
	seed(t, svc, "P1", 6)

	_, err := svc.ReduceQuantity(ctx, "P1", 2)
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)

	_, err = svc.ReduceQuantity(ctx, "P1", 1)
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, lowStockCall{productID: "P1", remaining: 3}, notifier.calls[0])
}

func TestReduceQuantityIgnoresNotifierFailure(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("queue down")}
	svc := NewService(newMemoryRepo(), ServiceConfig{Notifier: notifier, LowStockThreshold: 5})
	seed(t, svc, "P1", 2)

	p, err := svc.ReduceQuantity(context.Background(), "P1", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Quantity)
	assert.Len(t, notifier.calls, 1)
}

func TestReplaceKeepsPurchasePriceWhenOmitted(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), ServiceConfig{})
	created := seed(t, svc, "P1", 4)

	p, err := svc.Replace(ctx, created.ID, ReplaceInput{Name: "Renamed", Price: 20, Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	assert.Equal(t, int64(7), p.Quantity)
	assert.Equal(t, 8.0, p.PurchasePrice)
	assert.Equal(t, "P1", p.ProductID)

	_, err = svc.Replace(ctx, "nope", ReplaceInput{Name: "x"})
	require.ErrorIs(t, err, shared.ErrNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteByEitherKey(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemoryRepo(), ServiceConfig{})
	a := seed(t, svc, "A", 1)
	seed(t, svc, "B", 1)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.ErrorIs(t, svc.Delete(ctx, a.ID), shared.ErrNotFound)

	require.NoError(t, svc.DeleteByProductID(ctx, "B"))
	require.ErrorIs(t, svc.DeleteByProductID(ctx, "B"), shared.ErrNotFound)
}
