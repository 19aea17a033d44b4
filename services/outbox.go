package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"salonpos-backend/models"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const outboxBatchSize = 100

// OutboxDispatcher delivers NotificationEvent rows. Events are written in the same
// transaction as the order change, delivered right after commit, and redelivered by
// the scheduler until they succeed or run out of attempts.
type OutboxDispatcher struct {
	db          *gorm.DB
	push        PushSender
	sms         SMSSender
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

func NewOutboxDispatcher(db *gorm.DB, push PushSender, sms SMSSender, maxAttempts int, logger *zap.Logger) *OutboxDispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &OutboxDispatcher{
		db:          db,
		push:        push,
		sms:         sms,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether a sender is configured for the channel.
// Events for disabled channels are never written.
func (d *OutboxDispatcher) Enabled(channel models.NotificationChannel) bool {
	switch channel {
	case models.ChannelPush:
		return d.push != nil
	case models.ChannelSMS:
		return d.sms != nil
	}
	return false
}

// Enqueue writes events inside tx and returns the ids to dispatch after commit.
func (d *OutboxDispatcher) Enqueue(tx *gorm.DB, events []models.NotificationEvent) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for i := range events {
		ev := &events[i]
		if !d.Enabled(ev.Channel) {
			continue
		}
		ev.Status = models.NotificationPending
		if err := tx.Create(ev).Error; err != nil {
			return nil, fmt.Errorf("enqueue %s notification: %w", ev.Channel, err)
		}
		ids = append(ids, ev.ID)
	}
	return ids, nil
}

// Dispatch delivers the given pending events. Failures are recorded on the row, never returned.
func (d *OutboxDispatcher) Dispatch(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	var events []models.NotificationEvent
	if err := d.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, models.NotificationPending).
		Find(&events).Error; err != nil {
		d.logger.Error("load outbox events", zap.Error(err))
		return
	}
	for i := range events {
		d.deliver(ctx, &events[i])
	}
}

// DispatchPending retries every pending event; the scheduler calls it.
func (d *OutboxDispatcher) DispatchPending(ctx context.Context) (int, error) {
	var events []models.NotificationEvent
	if err := d.db.WithContext(ctx).
		Where("status = ? AND attempts < ?", models.NotificationPending, d.maxAttempts).
		Order("created_at ASC").
		Limit(outboxBatchSize).
		Find(&events).Error; err != nil {
		return 0, fmt.Errorf("load pending outbox events: %w", err)
	}

	sent := 0
	for i := range events {
		if d.deliver(ctx, &events[i]) {
			sent++
		}
	}
	return sent, nil
}

// claim bumps the attempt counter only if nobody else has since ev was loaded.
// Only the caller that wins the claim sends.
func (d *OutboxDispatcher) claim(ctx context.Context, ev *models.NotificationEvent) (bool, error) {
	res := d.db.WithContext(ctx).Model(&models.NotificationEvent{}).
		Where("id = ? AND status = ? AND attempts = ?", ev.ID, models.NotificationPending, ev.Attempts).
		Update("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	ev.Attempts++
	return true, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, ev *models.NotificationEvent) bool {
	claimed, err := d.claim(ctx, ev)
	if err != nil {
		d.logger.Error("claim notification", zap.String("event_id", ev.ID.String()), zap.Error(err))
		return false
	}
	if !claimed {
		return false
	}

	err = d.send(ctx, ev)

	updates := map[string]interface{}{}
	if err == nil {
		updates["status"] = models.NotificationSent
		updates["sent_at"] = d.now()
		updates["last_error"] = ""
	} else {
		updates["last_error"] = err.Error()
		if ev.Attempts >= d.maxAttempts {
			updates["status"] = models.NotificationFailed
		}
		d.logger.Warn("notification delivery failed",
			zap.String("event_id", ev.ID.String()),
			zap.String("order_id", ev.OrderID.String()),
			zap.String("channel", string(ev.Channel)),
			zap.Int("attempt", ev.Attempts),
			zap.Error(err))
	}

	if uerr := d.db.WithContext(ctx).Model(&models.NotificationEvent{}).
		Where("id = ?", ev.ID).Updates(updates).Error; uerr != nil {
		d.logger.Error("record notification attempt", zap.String("event_id", ev.ID.String()), zap.Error(uerr))
	}
	return err == nil
}

func (d *OutboxDispatcher) send(ctx context.Context, ev *models.NotificationEvent) error {
	switch ev.Channel {
	case models.ChannelPush:
		if d.push == nil {
			return errors.New("push channel disabled")
		}
		var data map[string]string
		if ev.Data != "" {
			if err := json.Unmarshal([]byte(ev.Data), &data); err != nil {
				return fmt.Errorf("decode push data: %w", err)
			}
		}
		return d.push.SendToTopic(ctx, ev.Recipient, ev.Title, ev.Body, data)
	case models.ChannelSMS:
		if d.sms == nil {
			return errors.New("sms channel disabled")
		}
		return d.sms.SendSMS(ctx, ev.Recipient, ev.Body)
	}
	return fmt.Errorf("unknown notification channel %q", ev.Channel)
}

// StartScheduler runs DispatchPending on the cron spec until the returned cron is stopped.
func (d *OutboxDispatcher) StartScheduler(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		sent, err := d.DispatchPending(context.Background())
		if err != nil {
			d.logger.Error("outbox redelivery", zap.Error(err))
			return
		}
		if sent > 0 {
			d.logger.Info("outbox redelivered notifications", zap.Int("sent", sent))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule outbox redelivery %q: %w", spec, err)
	}

	c.Start()
	d.logger.Info("outbox scheduler started", zap.String("schedule", spec))
	return c, nil
}
