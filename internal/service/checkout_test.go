package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/model"
	"github.com/iliyamo/online-storefront/internal/repository"
)

// passthroughRunner executes the closure without a real transaction so
// the fakes below carry all the state.
type passthroughRunner struct{}

func (passthroughRunner) RunTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type fakeCarts struct {
	mu    sync.Mutex
	items map[uint64][]model.CartItem
}

func (f *fakeCarts) ItemsTx(_ context.Context, _ *sql.Tx, cartID uint64) ([]model.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.CartItem, len(f.items[cartID]))
	copy(out, f.items[cartID])
	return out, nil
}

func (f *fakeCarts) ClearTx(_ context.Context, _ *sql.Tx, cartID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, cartID)
	return nil
}

type fakeProducts struct {
	mu       sync.Mutex
	products map[uint64]model.Product
}

func (f *fakeProducts) GetTx(_ context.Context, _ *sql.Tx, id uint64) (model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return model.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func (f *fakeProducts) setPrice(id, cents uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.PriceCents = cents
	f.products[id] = p
}

// fakeLedger mirrors the conditional-decrement semantics of the
// inventory repository's ReserveTx.
type fakeLedger struct {
	mu    sync.Mutex
	stock map[uint64]uint32
}

func (f *fakeLedger) ReserveTx(_ context.Context, _ *sql.Tx, productID uint64, quantity uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stock[productID] < quantity {
		return &repository.InsufficientStockError{ProductID: productID}
	}
	f.stock[productID] -= quantity
	return nil
}

func (f *fakeLedger) ReleaseTx(_ context.Context, _ *sql.Tx, productID uint64, quantity uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[productID] += quantity
	return nil
}

func (f *fakeLedger) level(productID uint64) uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[productID]
}

type fakeOrders struct {
	mu     sync.Mutex
	nextID uint64
	orders map[uint64]model.Order
	items  map[uint64][]model.OrderItem
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[uint64]model.Order{}, items: map[uint64][]model.OrderItem{}}
}

func (f *fakeOrders) CreateTx(_ context.Context, _ *sql.Tx, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeOrders) CreateItemsBulkTx(_ context.Context, _ *sql.Tx, items []model.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		f.items[it.OrderID] = append(f.items[it.OrderID], it)
	}
	return nil
}

func (f *fakeOrders) GetTx(_ context.Context, _ *sql.Tx, id uint64) (model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return model.Order{}, sql.ErrNoRows
	}
	return o, nil
}

func (f *fakeOrders) ItemsTx(_ context.Context, _ *sql.Tx, orderID uint64) ([]model.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.OrderItem, len(f.items[orderID]))
	copy(out, f.items[orderID])
	return out, nil
}

func (f *fakeOrders) SetStatusTx(_ context.Context, _ *sql.Tx, orderID uint64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return sql.ErrNoRows
	}
	o.Status = status
	f.orders[orderID] = o
	return nil
}

type checkoutFixture struct {
	carts    *fakeCarts
	products *fakeProducts
	ledger   *fakeLedger
	orders   *fakeOrders
	svc      *Checkout
}

func newFixture() *checkoutFixture {
	f := &checkoutFixture{
		carts:    &fakeCarts{items: map[uint64][]model.CartItem{}},
		products: &fakeProducts{products: map[uint64]model.Product{}},
		ledger:   &fakeLedger{stock: map[uint64]uint32{}},
		orders:   newFakeOrders(),
	}
	f.svc = NewCheckout(passthroughRunner{}, f.carts, f.products, f.ledger, f.orders)
	return f
}

func TestConvertEmptyCart(t *testing.T) {
	f := newFixture()
	f.carts.items[10] = nil

	_, err := f.svc.Convert(context.Background(), 1, 10, "12 Main St")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestConvertSnapshotsTotalAndClearsCart(t *testing.T) {
	f := newFixture()
	f.products.products[1] = model.Product{ID: 1, PriceCents: 1250}
	f.products.products[2] = model.Product{ID: 2, PriceCents: 300}
	f.ledger.stock[1] = 5
	f.ledger.stock[2] = 5
	f.carts.items[10] = []model.CartItem{
		{CartID: 10, ProductID: 1, Quantity: 2},
		{CartID: 10, ProductID: 2, Quantity: 3},
	}

	order, err := f.svc.Convert(context.Background(), 1, 10, "12 Main St")
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, uint64(2*1250+3*300), order.TotalCents)
	assert.Equal(t, uint64(1), order.UserID)

	// Stock decremented and the cart cleared.
	assert.Equal(t, uint32(3), f.ledger.level(1))
	assert.Equal(t, uint32(2), f.ledger.level(2))
	items, _ := f.carts.ItemsTx(context.Background(), nil, 10)
	assert.Empty(t, items)

	// Line items carry their own unit price snapshot.
	lines, err := f.orders.ItemsTx(context.Background(), nil, order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, uint64(1250), lines[0].UnitPriceCents)

	// A later price change must not touch the stored totals.
	f.products.setPrice(1, 9999)
	stored, err := f.orders.GetTx(context.Background(), nil, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TotalCents, stored.TotalCents)
}

func TestConvertShortLineReleasesEarlierReservations(t *testing.T) {
	f := newFixture()
	f.products.products[1] = model.Product{ID: 1, PriceCents: 100}
	f.products.products[2] = model.Product{ID: 2, PriceCents: 100}
	f.ledger.stock[1] = 10
	f.ledger.stock[2] = 1
	f.carts.items[10] = []model.CartItem{
		{CartID: 10, ProductID: 1, Quantity: 4},
		{CartID: 10, ProductID: 2, Quantity: 2}, // short
	}

	_, err := f.svc.Convert(context.Background(), 1, 10, "12 Main St")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	var short *repository.InsufficientStockError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, uint64(2), short.ProductID)

	// First line's reservation was put back; the cart is untouched.
	assert.Equal(t, uint32(10), f.ledger.level(1))
	assert.Equal(t, uint32(1), f.ledger.level(2))
	items, _ := f.carts.ItemsTx(context.Background(), nil, 10)
	assert.Len(t, items, 2)

	// No order row was kept.
	assert.Empty(t, f.orders.orders)
}

func TestConvertLastUnitHasOneWinner(t *testing.T) {
	f := newFixture()
	f.products.products[1] = model.Product{ID: 1, PriceCents: 500}
	f.ledger.stock[1] = 1
	f.carts.items[10] = []model.CartItem{{CartID: 10, ProductID: 1, Quantity: 1}}
	f.carts.items[20] = []model.CartItem{{CartID: 20, ProductID: 1, Quantity: 1}}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, cartID := range []uint64{10, 20} {
		wg.Add(1)
		go func(i int, cartID uint64) {
			defer wg.Done()
			_, errs[i] = f.svc.Convert(context.Background(), uint64(i+1), cartID, "12 Main St")
		}(i, cartID)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, repository.ErrInsufficientStock):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
	assert.Equal(t, uint32(0), f.ledger.level(1))
}

func TestCancelReleasesStock(t *testing.T) {
	f := newFixture()
	f.products.products[1] = model.Product{ID: 1, PriceCents: 100}
	f.ledger.stock[1] = 3
	f.carts.items[10] = []model.CartItem{{CartID: 10, ProductID: 1, Quantity: 2}}

	order, err := f.svc.Convert(context.Background(), 1, 10, "12 Main St")
	require.NoError(t, err)
	require.Equal(t, uint32(1), f.ledger.level(1))

	// Move to processing first; cancel must still be reachable.
	_, err = f.svc.SetStatus(context.Background(), order.ID, model.OrderProcessing)
	require.NoError(t, err)

	owner := auth.Principal{ID: 1, Role: model.RoleCustomer}
	cancelled, err := f.svc.Cancel(context.Background(), owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)
	assert.Equal(t, uint32(3), f.ledger.level(1))
}

func TestCancelDeniedForForeignCustomer(t *testing.T) {
	f := newFixture()
	f.products.products[1] = model.Product{ID: 1, PriceCents: 100}
	f.ledger.stock[1] = 2
	f.carts.items[10] = []model.CartItem{{CartID: 10, ProductID: 1, Quantity: 1}}

	order, err := f.svc.Convert(context.Background(), 1, 10, "12 Main St")
	require.NoError(t, err)

	stranger := auth.Principal{ID: 2, Role: model.RoleCustomer}
	_, err = f.svc.Cancel(context.Background(), stranger, order.ID)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	// Admins may cancel on the owner's behalf.
	admin := auth.Principal{ID: 3, Role: model.RoleAdmin}
	_, err = f.svc.Cancel(context.Background(), admin, order.ID)
	assert.NoError(t, err)
}

func TestSetStatusFollowsMachine(t *testing.T) {
	f := newFixture()
	f.products.products[1] = model.Product{ID: 1, PriceCents: 100}
	f.ledger.stock[1] = 2
	f.carts.items[10] = []model.CartItem{{CartID: 10, ProductID: 1, Quantity: 1}}

	order, err := f.svc.Convert(context.Background(), 1, 10, "12 Main St")
	require.NoError(t, err)

	// pending -> shipped skips processing and is rejected.
	_, err = f.svc.SetStatus(context.Background(), order.ID, model.OrderShipped)
	assert.ErrorIs(t, err, ErrBadTransition)

	for _, status := range []string{model.OrderProcessing, model.OrderShipped, model.OrderDelivered} {
		_, err = f.svc.SetStatus(context.Background(), order.ID, status)
		require.NoError(t, err)
	}

	// Terminal orders are frozen, including against cancellation.
	_, err = f.svc.SetStatus(context.Background(), order.ID, model.OrderProcessing)
	assert.ErrorIs(t, err, ErrBadTransition)
	owner := auth.Principal{ID: 1, Role: model.RoleCustomer}
	_, err = f.svc.Cancel(context.Background(), owner, order.ID)
	assert.ErrorIs(t, err, ErrBadTransition)

	// Delivered orders never give stock back.
	assert.Equal(t, uint32(1), f.ledger.level(1))

	_, err = f.svc.SetStatus(context.Background(), order.ID, "misplaced")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatusCancelledReleasesStock(t *testing.T) {
	f := newFixture()
	f.products.products[1] = model.Product{ID: 1, PriceCents: 100}
	f.ledger.stock[1] = 5
	f.carts.items[10] = []model.CartItem{{CartID: 10, ProductID: 1, Quantity: 4}}

	order, err := f.svc.Convert(context.Background(), 1, 10, "12 Main St")
	require.NoError(t, err)
	require.Equal(t, uint32(1), f.ledger.level(1))

	_, err = f.svc.SetStatus(context.Background(), order.ID, model.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), f.ledger.level(1))
}
