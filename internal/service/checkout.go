// Package service holds the order conversion workflow.  Handlers stay
// thin; everything that must happen atomically lives here, behind one
// database transaction.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/online-storefront/internal/auth"
	"github.com/iliyamo/online-storefront/internal/database"
	"github.com/iliyamo/online-storefront/internal/model"
)

// ErrEmptyCart is returned when a conversion is attempted on a cart
// with no items.  Handlers translate it into HTTP 422.
var ErrEmptyCart = errors.New("cart is empty")

// ErrBadTransition is returned when an order status change is not
// permitted by the status machine.  Handlers translate it into 409.
var ErrBadTransition = errors.New("invalid status transition")

// ErrInvalidStatus is returned for status values outside the known set.
var ErrInvalidStatus = errors.New("unknown order status")

// CartStore is the slice of the cart repository the checkout needs.
type CartStore interface {
	ItemsTx(ctx context.Context, tx *sql.Tx, cartID uint64) ([]model.CartItem, error)
	ClearTx(ctx context.Context, tx *sql.Tx, cartID uint64) error
}

// ProductStore resolves products inside the conversion transaction so
// the unit price snapshot and the reservation see the same row.
type ProductStore interface {
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Product, error)
}

// StockLedger is the slice of the inventory repository the checkout
// needs.  ReserveTx must decrement conditionally and fail with
// *repository.InsufficientStockError when stock is short.
type StockLedger interface {
	ReserveTx(ctx context.Context, tx *sql.Tx, productID uint64, quantity uint32) error
	ReleaseTx(ctx context.Context, tx *sql.Tx, productID uint64, quantity uint32) error
}

// OrderStore is the slice of the order repository the checkout needs.
type OrderStore interface {
	CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error
	CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error
	GetTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Order, error)
	ItemsTx(ctx context.Context, tx *sql.Tx, orderID uint64) ([]model.OrderItem, error)
	SetStatusTx(ctx context.Context, tx *sql.Tx, orderID uint64, status string) error
}

// Checkout converts carts into orders and drives the order status
// machine.  All mutations run through the TxRunner so a failure at any
// step leaves both the cart and the inventory untouched.
type Checkout struct {
	tx       database.TxRunner
	carts    CartStore
	products ProductStore
	ledger   StockLedger
	orders   OrderStore
}

// NewCheckout wires the checkout service with its storage dependencies.
func NewCheckout(tx database.TxRunner, carts CartStore, products ProductStore, ledger StockLedger, orders OrderStore) *Checkout {
	return &Checkout{tx: tx, carts: carts, products: products, ledger: ledger, orders: orders}
}

// Convert turns the cart's items into a pending order.  Within one
// transaction it reserves stock per line, snapshots unit prices and the
// total in cents, writes the order with its line items, and clears the
// cart.  If any line cannot be reserved, reservations already taken for
// earlier lines are released and the whole conversion fails; the cart
// is left as it was.
func (s *Checkout) Convert(ctx context.Context, userID, cartID uint64, address string) (model.Order, error) {
	var order model.Order

	err := s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		items, err := s.carts.ItemsTx(ctx, tx, cartID)
		if err != nil {
			return fmt.Errorf("load cart items: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var (
			total    uint64
			reserved []model.CartItem
			lines    = make([]model.OrderItem, 0, len(items))
		)
		for _, it := range items {
			p, err := s.products.GetTx(ctx, tx, it.ProductID)
			if err != nil {
				s.releaseAll(ctx, tx, reserved)
				return fmt.Errorf("load product %d: %w", it.ProductID, err)
			}
			if err := s.ledger.ReserveTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
				// Put back what earlier lines took.  The surrounding
				// rollback covers the SQL path; the explicit releases
				// keep the invariant independent of the storage engine.
				s.releaseAll(ctx, tx, reserved)
				return err
			}
			reserved = append(reserved, it)
			total += uint64(it.Quantity) * p.PriceCents
			lines = append(lines, model.OrderItem{
				ProductID:      it.ProductID,
				Quantity:       it.Quantity,
				UnitPriceCents: p.PriceCents,
			})
		}

		order = model.Order{
			UserID:     userID,
			CartID:     cartID,
			Address:    address,
			Status:     model.OrderPending,
			TotalCents: total,
		}
		if err := s.orders.CreateTx(ctx, tx, &order); err != nil {
			s.releaseAll(ctx, tx, reserved)
			return fmt.Errorf("create order: %w", err)
		}
		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := s.orders.CreateItemsBulkTx(ctx, tx, lines); err != nil {
			s.releaseAll(ctx, tx, reserved)
			return fmt.Errorf("create order items: %w", err)
		}
		if err := s.carts.ClearTx(ctx, tx, cartID); err != nil {
			s.releaseAll(ctx, tx, reserved)
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// Cancel moves an order to cancelled on behalf of its owner or an
// elevated role.  Cancellation is only reachable from pending or
// processing; terminal orders stay frozen.  Every line's quantity is
// released back to inventory in the same transaction.
func (s *Checkout) Cancel(ctx context.Context, p auth.Principal, orderID uint64) (model.Order, error) {
	var order model.Order

	err := s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		o, err := s.orders.GetTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if err := auth.Authorize(p, o.UserID); err != nil {
			return err
		}
		if !model.CanTransition(o.Status, model.OrderCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrBadTransition, o.Status, model.OrderCancelled)
		}

		if err := s.releaseOrderLines(ctx, tx, orderID); err != nil {
			return err
		}
		if err := s.orders.SetStatusTx(ctx, tx, orderID, model.OrderCancelled); err != nil {
			return fmt.Errorf("set status: %w", err)
		}

		o.Status = model.OrderCancelled
		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// SetStatus advances an order along the status machine on behalf of
// staff.  Moving into cancelled releases the order's reserved stock,
// the same as Cancel.
func (s *Checkout) SetStatus(ctx context.Context, orderID uint64, status string) (model.Order, error) {
	if !model.ValidOrderStatus(status) {
		return model.Order{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var order model.Order

	err := s.tx.RunTx(ctx, func(tx *sql.Tx) error {
		o, err := s.orders.GetTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !model.CanTransition(o.Status, status) {
			return fmt.Errorf("%w: %s -> %s", ErrBadTransition, o.Status, status)
		}

		if status == model.OrderCancelled {
			if err := s.releaseOrderLines(ctx, tx, orderID); err != nil {
				return err
			}
		}
		if err := s.orders.SetStatusTx(ctx, tx, orderID, status); err != nil {
			return fmt.Errorf("set status: %w", err)
		}

		o.Status = status
		order = o
		return nil
	})
	if err != nil {
		return model.Order{}, err
	}
	return order, nil
}

// releaseOrderLines returns each line item's quantity to inventory.
func (s *Checkout) releaseOrderLines(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	lines, err := s.orders.ItemsTx(ctx, tx, orderID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	for _, line := range lines {
		if err := s.ledger.ReleaseTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("release product %d: %w", line.ProductID, err)
		}
	}
	return nil
}

// releaseAll undoes the reservations taken so far in a failed
// conversion.  Errors are swallowed: the caller is already failing and
// the transaction rollback restores the database regardless.
func (s *Checkout) releaseAll(ctx context.Context, tx *sql.Tx, reserved []model.CartItem) {
	for _, it := range reserved {
		_ = s.ledger.ReleaseTx(ctx, tx, it.ProductID, it.Quantity)
	}
}
