package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderCreated   OrderStatus = "Created"
	OrderCompleted OrderStatus = "Completed"
	OrderCancelled OrderStatus = "Cancelled"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentCard PaymentMethod = "Card"
	PaymentYape PaymentMethod = "Yape"
)

// Code is the single letter printed on receipts.
func (p PaymentMethod) Code() string {
	switch p {
	case PaymentCash:
		return "E"
	case PaymentCard:
		return "V"
	case PaymentYape:
		return "Y"
	}
	return ""
}

type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	ShopID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_shop_order_number,priority:1" json:"shopId"`
	OrderNumber int         `gorm:"not null;uniqueIndex:idx_shop_order_number,priority:2" json:"orderNumber"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'Created';index" json:"status"`

	TotalPrice      decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	PaidAmount      *decimal.Decimal `gorm:"type:decimal(10,2)" json:"paidAmount"`
	PaymentMethod   *PaymentMethod   `gorm:"type:varchar(10)" json:"paymentMethod"`
	TicketNumber    *string          `json:"ticketNumber"`
	StylistEarnings *decimal.Decimal `gorm:"type:decimal(10,2)" json:"stylistEarnings"`
	CompletedAt     *time.Time       `json:"completedAt"`

	ClientID   uuid.UUID `gorm:"type:uuid;index;not null" json:"clientId"`
	StylistID  uuid.UUID `gorm:"type:uuid;index;not null" json:"stylistId"`
	OperatorID uuid.UUID `gorm:"type:uuid;index;not null" json:"operatorId"`
	CashierID  uuid.UUID `gorm:"type:uuid;index;not null" json:"cashierId"`

	Client     *Client          `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Stylist    *User            `gorm:"foreignKey:StylistID" json:"stylist,omitempty"`
	Operator   *User            `gorm:"foreignKey:OperatorID" json:"operator,omitempty"`
	Cashier    *User            `gorm:"foreignKey:CashierID" json:"cashier,omitempty"`
	Treatments []OrderTreatment `gorm:"foreignKey:OrderID" json:"treatments,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

// OrderTreatment carries the price charged for a treatment at order time.
type OrderTreatment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"orderId"`
	TreatmentID uuid.UUID       `gorm:"type:uuid;index;not null" json:"treatmentId"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	Treatment *Treatment `gorm:"foreignKey:TreatmentID" json:"treatment,omitempty"`
}

func (ot *OrderTreatment) BeforeCreate(tx *gorm.DB) (err error) {
	if ot.ID == uuid.Nil {
		ot.ID = uuid.New()
	}
	return
}
