package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is the tenant boundary. Address lines, phone and RUC are printed on receipts.
type Shop struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	AddressLine1   string    `json:"addressLine1"`
	AddressLine2   string    `json:"addressLine2"`
	AddressLine3   string    `json:"addressLine3"`
	Phone          string    `json:"phone"`
	RUC            string    `gorm:"column:ruc" json:"ruc"`
	CurrencySymbol string    `gorm:"default:'S/'" json:"currencySymbol"`

	Users      []User      `gorm:"foreignKey:ShopID" json:"-"`
	Treatments []Treatment `gorm:"foreignKey:ShopID" json:"-"`
	Orders     []Order     `gorm:"foreignKey:ShopID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
