package services

import (
	"context"
	"fmt"
	"strconv"

	"salonpos-backend/models"
	"salonpos-backend/utils"

	"github.com/shopspring/decimal"
)

type ReceiptLine struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (l ReceiptLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ReceiptSnapshot is everything needed to render or forward a receipt.
type ReceiptSnapshot struct {
	OrderID      string `json:"orderId"`
	OrderNumber  string `json:"orderNumber"`
	TicketNumber string `json:"ticketNumber"`

	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`

	ShopName     string `json:"shopName"`
	ShopAddress1 string `json:"shopAddress1"`
	ShopAddress2 string `json:"shopAddress2"`
	ShopAddress3 string `json:"shopAddress3"`
	ShopPhone    string `json:"shopPhone"`
	ShopRUC      string `json:"shopRuc"`

	Date string `json:"date"`
	Time string `json:"time"`

	StylistName  string `json:"stylistName"`
	OperatorName string `json:"operatorName"`
	CashierName  string `json:"cashierName"`

	Treatments    []ReceiptLine   `json:"treatments"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	Currency      string          `json:"currency"`
}

// PaymentCode is the single letter printed next to each line.
func (s ReceiptSnapshot) PaymentCode() string {
	if code := models.PaymentMethod(s.PaymentMethod).Code(); code != "" {
		return code
	}
	return models.PaymentCash.Code()
}

// ReceiptDelivery hands a snapshot to a receipt channel.
type ReceiptDelivery interface {
	Deliver(ctx context.Context, snapshot ReceiptSnapshot) error
}

// MergeReceiptLines folds lines with the same name and price into one line with a quantity.
// First appearance decides ordering. Persisted order lines are never merged.
func MergeReceiptLines(lines []models.OrderTreatment) []ReceiptLine {
	type key struct {
		name  string
		price string
	}
	index := make(map[key]int)
	merged := make([]ReceiptLine, 0, len(lines))
	for _, l := range lines {
		name := ""
		if l.Treatment != nil {
			name = l.Treatment.Name
		}
		k := key{name: name, price: l.Price.StringFixed(2)}
		if i, ok := index[k]; ok {
			merged[i].Quantity++
			continue
		}
		index[k] = len(merged)
		merged = append(merged, ReceiptLine{Name: name, Price: l.Price, Quantity: 1})
	}
	return merged
}

// BuildReceiptSnapshot expects order with Client, Stylist, Operator, Cashier and
// Treatments.Treatment preloaded.
func BuildReceiptSnapshot(order *models.Order, shop *models.Shop, cal *utils.Calendar) ReceiptSnapshot {
	issued := order.CreatedAt
	if order.CompletedAt != nil {
		issued = *order.CompletedAt
	}
	local := cal.Local(issued)

	snap := ReceiptSnapshot{
		OrderID:      order.ID.String(),
		OrderNumber:  strconv.Itoa(order.OrderNumber),
		ShopName:     shop.Name,
		ShopAddress1: shop.AddressLine1,
		ShopAddress2: shop.AddressLine2,
		ShopAddress3: shop.AddressLine3,
		ShopPhone:    shop.Phone,
		ShopRUC:      shop.RUC,
		Date:         local.Format("02/01/2006"),
		Time:         local.Format("15:04:05"),
		Treatments:   MergeReceiptLines(order.Treatments),
		TotalPrice:   order.TotalPrice,
		PaidAmount:   order.TotalPrice,
		Currency:     shop.CurrencySymbol,
	}
	if snap.Currency == "" {
		snap.Currency = "S/"
	}
	if order.TicketNumber != nil {
		snap.TicketNumber = *order.TicketNumber
	}
	if order.PaidAmount != nil {
		snap.PaidAmount = *order.PaidAmount
	}
	if order.PaymentMethod != nil {
		snap.PaymentMethod = string(*order.PaymentMethod)
	}
	if order.Client != nil {
		snap.ClientName = order.Client.Name
		snap.ClientEmail = order.Client.Email
	}
	if order.Stylist != nil {
		snap.StylistName = order.Stylist.Name
	}
	if order.Operator != nil {
		snap.OperatorName = order.Operator.Name
	}
	if order.Cashier != nil {
		snap.CashierName = order.Cashier.Name
	}
	return snap
}

// EmailReceiptDelivery renders the PDF locally and mails it to the client.
type EmailReceiptDelivery struct {
	renderer *ReceiptRenderer
	mailer   Mailer
}

func NewEmailReceiptDelivery(renderer *ReceiptRenderer, mailer Mailer) *EmailReceiptDelivery {
	return &EmailReceiptDelivery{renderer: renderer, mailer: mailer}
}

func (d *EmailReceiptDelivery) Deliver(ctx context.Context, snap ReceiptSnapshot) error {
	pdf, err := d.renderer.Render(snap)
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	body, err := renderReceiptEmail(snap)
	if err != nil {
		return fmt.Errorf("render receipt email: %w", err)
	}
	return d.mailer.Send(ctx, Mail{
		FromName: snap.ShopName,
		To:       snap.ClientEmail,
		Subject:  fmt.Sprintf("Boleta de Venta - %s - #%s", snap.ShopName, snap.OrderNumber),
		HTML:     body,
		Attachments: []Attachment{{
			Filename:    fmt.Sprintf("boleta-%s.pdf", snap.OrderNumber),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
}
