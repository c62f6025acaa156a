package model

import "time"

// 1ユーザー（またはセッション）につき1つ。user_id と session_key はどちらか片方だけ
type Cart struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *int64    `gorm:"uniqueIndex" json:"user_id,omitempty"`
	SessionKey *string   `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func NewUserCart(userID int64) Cart {
	return Cart{UserID: &userID}
}

func NewSessionCart(sessionKey string) Cart {
	return Cart{SessionKey: &sessionKey}
}

// 持ち主が片方だけ設定されているか
func (c Cart) OwnerValid() bool {
	hasUser := c.UserID != nil && *c.UserID > 0
	hasSession := c.SessionKey != nil && *c.SessionKey != ""
	return hasUser != hasSession
}
