package model

import "time"

type NotificationKind string

const (
	NotificationStatusChanged    NotificationKind = "status_changed"
	NotificationDeliveryAssigned NotificationKind = "delivery_assigned"
)

type Notification struct {
	ID        int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64            `gorm:"not null;index" json:"user_id"`
	OrderID   int64            `gorm:"not null;index" json:"order_id"`
	Kind      NotificationKind `gorm:"type:varchar(30);not null" json:"kind"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
}
