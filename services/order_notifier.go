package services

import (
	"context"
	"encoding/json"
	"fmt"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pushKindNewOrder     = "new_order"
	pushKindOrderUpdated = "order_updated"
)

// orderEffects collects what an order mutation must announce once its transaction commits.
type orderEffects struct {
	orderID  uuid.UUID
	refresh  []uuid.UUID
	complete []uuid.UUID
	outbox   []uuid.UUID
}

// OrderNotifier stages durable notifications inside the order transaction and
// announces the change after commit. Nothing it does after commit can fail the request.
type OrderNotifier struct {
	hub    *RealtimeHub
	outbox *OutboxDispatcher
	logger *zap.Logger

	// SyncDispatch delivers outbox events before Publish returns instead of in the background.
	SyncDispatch bool
}

func NewOrderNotifier(hub *RealtimeHub, outbox *OutboxDispatcher, logger *zap.Logger) *OrderNotifier {
	return &OrderNotifier{hub: hub, outbox: outbox, logger: logger}
}

func (n *OrderNotifier) stage(tx *gorm.DB, events ...models.NotificationEvent) ([]uuid.UUID, error) {
	if n == nil || n.outbox == nil {
		return nil, nil
	}
	return n.outbox.Enqueue(tx, events)
}

// stageCashierPush queues the topic push telling the cashier an order awaits them.
func (n *OrderNotifier) stageCashierPush(tx *gorm.DB, order *models.Order, kind string) ([]uuid.UUID, error) {
	title, body := "Nueva orden creada", "Tienes una nueva orden para completar"
	if kind == pushKindOrderUpdated {
		title, body = "Orden actualizada", fmt.Sprintf("La orden #%d fue modificada", order.OrderNumber)
	}
	data, err := json.Marshal(map[string]string{
		"orderId": order.ID.String(),
		"type":    kind,
	})
	if err != nil {
		return nil, fmt.Errorf("encode push data: %w", err)
	}
	return n.stage(tx, models.NotificationEvent{
		OrderID:   order.ID,
		Channel:   models.ChannelPush,
		Recipient: CashierTopic(order.CashierID.String()),
		Title:     title,
		Body:      body,
		Data:      string(data),
	})
}

// stageCompletionSMS queues a thank-you text when the client left a usable phone number.
func (n *OrderNotifier) stageCompletionSMS(tx *gorm.DB, order *models.Order, client *models.Client, shopName string) ([]uuid.UUID, error) {
	if client == nil {
		return nil, nil
	}
	phone, ok := utils.NormalizePhone(client.Phone)
	if !ok {
		return nil, nil
	}
	body := fmt.Sprintf("Hola %s, gracias por tu visita a %s. Orden #%d, total S/ %s.",
		client.Name, shopName, order.OrderNumber, order.TotalPrice.StringFixed(2))
	return n.stage(tx, models.NotificationEvent{
		OrderID:   order.ID,
		Channel:   models.ChannelSMS,
		Recipient: phone,
		Body:      body,
	})
}

// Publish emits realtime events and hands staged outbox rows to the dispatcher.
func (n *OrderNotifier) Publish(ctx context.Context, eff orderEffects) {
	if n == nil {
		return
	}
	if n.hub != nil {
		for _, id := range uniqueIDs(eff.complete) {
			n.hub.EmitCompleteRefresh(id, eff.orderID)
		}
		for _, id := range uniqueIDs(eff.refresh) {
			n.hub.EmitOrderRefresh(id, eff.orderID)
		}
	}

	if n.outbox == nil || len(eff.outbox) == 0 {
		return
	}
	if n.SyncDispatch {
		n.outbox.Dispatch(ctx, eff.outbox)
		return
	}
	go n.outbox.Dispatch(context.WithoutCancel(ctx), eff.outbox)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
