package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"salonpos-backend/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushSender delivers topic-addressed mobile notifications.
type PushSender interface {
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

// CashierTopic is the push topic a cashier's device subscribes to.
func CashierTopic(cashierID string) string {
	return "cashier_" + cashierID
}

// FCMPushSender sends through Firebase Cloud Messaging with service-account credentials.
type FCMPushSender struct {
	client *messaging.Client
}

func NewFCMPushSender(ctx context.Context, cfg config.FirebaseConfig) (*FCMPushSender, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsBase64 != "":
		raw, err := base64.StdEncoding.DecodeString(cfg.CredentialsBase64)
		if err != nil {
			return nil, fmt.Errorf("decode firebase credentials: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(raw))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase messaging client: %w", err)
	}
	return &FCMPushSender{client: client}, nil
}

func (s *FCMPushSender) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	if s == nil || s.client == nil {
		return errors.New("fcm sender not initialised")
	}
	_, err := s.client.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("fcm send to %s: %w", topic, err)
	}
	return nil
}
