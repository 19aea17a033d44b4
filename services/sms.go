// services/sms.go
package services

import (
	"context"
	"errors"
	"fmt"

	"salonpos-backend/config"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

// SMSSender delivers a text message to an E.164 phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type TwilioSMSSender struct {
	client   *twilio.RestClient
	from     string
	whatsApp string
	logger   *zap.Logger
}

func NewTwilioSMSSender(cfg config.TwilioConfig, logger *zap.Logger) *TwilioSMSSender {
	return &TwilioSMSSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
		from:     cfg.PhoneNumber,
		whatsApp: cfg.WhatsAppNumber,
		logger:   logger,
	}
}

// SendSMS uses WhatsApp when a WhatsApp sender is configured, plain SMS otherwise.
// The twilio client has no context support; ctx only short-circuits cancelled sends.
func (s *TwilioSMSSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return errors.New("sms recipient is empty")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetBody(body)
	if s.whatsApp != "" {
		params.SetTo("whatsapp:" + to)
		params.SetFrom("whatsapp:" + s.whatsApp)
	} else {
		params.SetTo(to)
		params.SetFrom(s.from)
	}

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	if resp.Sid != nil {
		s.logger.Debug("sms sent", zap.String("to", to), zap.String("sid", *resp.Sid))
	}
	return nil
}
