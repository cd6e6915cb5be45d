package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotifUnread NotificationStatus = "Unread"
	NotifRead   NotificationStatus = "Read"
)

// Notification is an in-app notice for a user. A nil UserID means the
// notice is addressed to every active user (admin broadcast).
type Notification struct {
	NotifID   uint               `gorm:"primaryKey;column:notif_id" json:"notif_id"`
	UserID    *uuid.UUID         `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	Subject   string             `gorm:"type:varchar(255);not null" json:"subject" validate:"required"`
	Message   string             `gorm:"type:text;not null" json:"message" validate:"required"`
	Status    NotificationStatus `gorm:"type:varchar(10);not null;default:'Unread'" json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
