package model

import "time"

// ほしい物リスト。同じ商品は1ユーザー1件
type WishlistItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:1" json:"user_id"`
	ProductID int64     `gorm:"not null;uniqueIndex:idx_wishlist_user_product,priority:2;index" json:"product_id"`
	AddedAt   time.Time `gorm:"not null;autoCreateTime" json:"added_at"`
}
