package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealtimeHubChannelFilter(t *testing.T) {
	hub := NewRealtimeHub()
	cashier, operator, order := uuid.New(), uuid.New(), uuid.New()

	mine, unsubMine := hub.Subscribe(cashier.String())
	defer unsubMine()
	all, unsubAll := hub.Subscribe("")
	defer unsubAll()
	assert.Equal(t, 2, hub.Subscribers())

	hub.EmitOrderRefresh(operator, order)
	hub.EmitCompleteRefresh(cashier, order)

	got := <-mine
	assert.Equal(t, "complete-refresh-"+cashier.String(), got.Name)
	assert.Equal(t, order.String(), got.OrderID)
	assert.Empty(t, mine)

	assert.Equal(t, "order-refresh-"+operator.String(), (<-all).Name)
	assert.Equal(t, "complete-refresh-"+cashier.String(), (<-all).Name)
}

func TestRealtimeHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewRealtimeHub()
	recipient := uuid.New()
	events, unsubscribe := hub.Subscribe("")

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.EmitOrderRefresh(recipient, uuid.New())
	}
	assert.Len(t, events, subscriberBuffer)

	unsubscribe()
	unsubscribe()
	assert.Zero(t, hub.Subscribers())

	drained := 0
	for range events {
		drained++
	}
	require.Equal(t, subscriberBuffer, drained)

	hub.EmitOrderRefresh(recipient, uuid.New())
}
