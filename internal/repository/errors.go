// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting SQL errors.
package repository

import (
	"errors"
	"fmt"
)

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as deleting a product that is still
// referenced by orders.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInsufficientStock is the base error for failed reservations.
// Handlers translate it into HTTP 409; retrying is the client's
// decision, never the server's.
var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError names the product whose reservation failed so
// the caller can report which line of a multi-line conversion was short.
type InsufficientStockError struct {
	ProductID uint64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d", e.ProductID)
}

// Unwrap lets errors.Is match ErrInsufficientStock.
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
