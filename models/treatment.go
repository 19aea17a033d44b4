package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Treatment is a catalog entry. Price is only the default suggested on new order lines;
// Percentage is the stylist commission applied at completion.
type Treatment struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ShopID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"shopId"`
	Name       string          `gorm:"not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"percentage"`
	IsActive   bool            `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Treatment) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
