package services

import (
	"sync"

	"github.com/google/uuid"
)

const (
	EventOrderRefresh    = "order-refresh"
	EventCompleteRefresh = "complete-refresh"

	subscriberBuffer = 16
)

// RealtimeEvent is delivered to live clients. Name carries the recipient suffix,
// e.g. "order-refresh-<userId>".
type RealtimeEvent struct {
	Name      string `json:"event"`
	Recipient string `json:"recipient"`
	OrderID   string `json:"orderId"`
}

type subscriber struct {
	ch      chan RealtimeEvent
	channel string
}

// RealtimeHub fans events out to connected streams. Delivery is best effort:
// events for a slow subscriber are dropped once its buffer is full.
type RealtimeHub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
}

func NewRealtimeHub() *RealtimeHub {
	return &RealtimeHub{subs: make(map[int]*subscriber)}
}

// Subscribe registers a stream. An empty channel receives every event; otherwise only
// events addressed to that recipient id. The returned func unsubscribes.
func (h *RealtimeHub) Subscribe(channel string) (<-chan RealtimeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	sub := &subscriber{ch: make(chan RealtimeEvent, subscriberBuffer), channel: channel}
	h.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
}

func (h *RealtimeHub) publish(event string, recipient, orderID uuid.UUID) {
	ev := RealtimeEvent{
		Name:      event + "-" + recipient.String(),
		Recipient: recipient.String(),
		OrderID:   orderID.String(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.channel != "" && sub.channel != ev.Recipient {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func (h *RealtimeHub) EmitOrderRefresh(recipient, orderID uuid.UUID) {
	h.publish(EventOrderRefresh, recipient, orderID)
}

func (h *RealtimeHub) EmitCompleteRefresh(recipient, orderID uuid.UUID) {
	h.publish(EventCompleteRefresh, recipient, orderID)
}

// Subscribers reports the number of connected streams.
func (h *RealtimeHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
