package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationChannel string

const (
	ChannelPush NotificationChannel = "push"
	ChannelSMS  NotificationChannel = "sms"
)

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
)

// NotificationEvent is an outbox row written alongside the order change that produced it.
type NotificationEvent struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID           `gorm:"type:uuid;index;not null"`
	Channel   NotificationChannel `gorm:"type:varchar(20);not null"`
	Recipient string              `gorm:"not null"` // push topic or phone number
	Title     string
	Body      string `gorm:"type:text;not null"`
	Data      string `gorm:"type:text"` // JSON object, push only

	Status    NotificationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts  int                `gorm:"not null;default:0"`
	LastError string             `gorm:"type:text"`
	SentAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *NotificationEvent) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
