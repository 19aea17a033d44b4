package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a customer keyed globally by DNI. ShopID records the shop that first saw it.
type Client struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ShopID uuid.UUID `gorm:"type:uuid;index;not null" json:"shopId"`

	DNI   string `gorm:"column:dni;uniqueIndex;not null" json:"dni"`
	Name  string `gorm:"not null" json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`

	Orders []Order `gorm:"foreignKey:ClientID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
