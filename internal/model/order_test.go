package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusMachine(t *testing.T) {
	allowed := map[[2]string]bool{
		{OrderPending, OrderProcessing}:   true,
		{OrderPending, OrderCancelled}:    true,
		{OrderProcessing, OrderShipped}:   true,
		{OrderProcessing, OrderCancelled}: true,
		{OrderShipped, OrderDelivered}:    true,
	}
	statuses := []string{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled}
	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]string{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestValidOrderStatus(t *testing.T) {
	assert.True(t, ValidOrderStatus(OrderPending))
	assert.True(t, ValidOrderStatus(OrderCancelled))
	assert.False(t, ValidOrderStatus("confirmed"))
	assert.False(t, ValidOrderStatus(""))
}
