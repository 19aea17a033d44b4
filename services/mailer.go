package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"

	"salonpos-backend/config"

	"gopkg.in/gomail.v2"
)

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Mail struct {
	FromName    string
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// SMTPMailer sends through an authenticated SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if mail.To == "" {
		return errors.New("mail recipient is empty")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, mail.FromName)
	msg.SetHeader("To", mail.To)
	msg.SetHeader("Subject", mail.Subject)
	msg.SetBody("text/html", mail.HTML)
	for _, a := range mail.Attachments {
		data := a.Data
		msg.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", mail.To, err)
	}
	return nil
}

var receiptEmailTemplate = template.Must(template.New("receipt").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333; text-align: center;">¡Gracias por su compra!</h2>
  <div style="background-color: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <h3 style="color: #2c3e50; margin-top: 0;">Detalles de su compra:</h3>
    <p><strong>Cliente:</strong> {{.ClientName}}</p>
    <p><strong>Orden:</strong> #{{.OrderNumber}}</p>
    <p><strong>Fecha:</strong> {{.Date}} a las {{.Time}}</p>
    <p><strong>Total:</strong> {{.Currency}}{{.TotalPrice.StringFixed 2}}</p>
  </div>
  <p style="margin: 0;"><strong>Su boleta está adjunta en este correo como archivo PDF.</strong></p>
  <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;">
    <h3 style="color: #2c3e50;">{{.ShopName}}</h3>
    {{with .ShopAddress1}}<p style="color: #666; font-size: 14px;">{{.}}</p>{{end}}
    {{with .ShopAddress2}}<p style="color: #666; font-size: 14px;">{{.}}</p>{{end}}
    {{with .ShopAddress3}}<p style="color: #666; font-size: 14px;">{{.}}</p>{{end}}
    {{with .ShopPhone}}<p style="color: #666; font-size: 14px;">Tel: {{.}}</p>{{end}}
  </div>
  <p style="text-align: center; margin-top: 20px; color: #666; font-size: 12px;">¡Esperamos verle pronto nuevamente!</p>
</div>`))

func renderReceiptEmail(snap ReceiptSnapshot) (string, error) {
	var buf bytes.Buffer
	if err := receiptEmailTemplate.Execute(&buf, snap); err != nil {
		return "", err
	}
	return buf.String(), nil
}
