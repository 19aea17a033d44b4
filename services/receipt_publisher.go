package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// PubSubReceiptPublisher defers receipt rendering to the function subscribed to topic.
// Deliver returns once the message is queued; the publish outcome is only logged.
type PubSubReceiptPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
	logger  *zap.Logger
}

func NewPubSubReceiptPublisher(topic *pubsub.Topic, logger *zap.Logger) (*PubSubReceiptPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub receipt publisher: topic is required")
	}
	return &PubSubReceiptPublisher{
		topic:   topic,
		marshal: json.Marshal,
		logger:  logger,
	}, nil
}

func (p *PubSubReceiptPublisher) Deliver(ctx context.Context, snap ReceiptSnapshot) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub receipt publisher: not initialised")
	}

	data, err := p.marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal receipt snapshot: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"orderId":     snap.OrderID,
			"orderNumber": snap.OrderNumber,
			"type":        "order_receipt",
		},
	})

	go func() {
		id, err := result.Get(context.WithoutCancel(ctx))
		if err != nil {
			p.logger.Error("publish receipt job", zap.String("order_id", snap.OrderID), zap.Error(err))
			return
		}
		p.logger.Debug("receipt job published", zap.String("order_id", snap.OrderID), zap.String("message_id", id))
	}()
	return nil
}
