package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64           `gorm:"not null;index;uniqueIndex:idx_order_user_idem,priority:1" json:"user_id"`
	AddressID      int64           `gorm:"not null" json:"address_id"`
	DeliveryUserID *int64          `gorm:"index" json:"delivery_user_id,omitempty"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total"`
	//同じユーザー・同じキーなら同じ注文を返す。未指定は NULL
	IdempotencyKey *string   `gorm:"type:varchar(255);uniqueIndex:idx_order_user_idem,priority:2" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 配達担当がこの注文に割り当てられているか
func (o Order) IsAssignedTo(userID int64) bool {
	return o.DeliveryUserID != nil && *o.DeliveryUserID == userID
}
