package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// 配送先住所
type Address struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`
	//郵便番号
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"`

	//都道府県
	Prefecture string `gorm:"type:varchar(100);not null" json:"prefecture"`

	//市区町村
	City string `gorm:"type:varchar(255);not null" json:"city"`

	//番地など
	Line1 string `gorm:"type:varchar(255);not null" json:"line1"`

	//建物名など
	Line2 string `gorm:"type:varchar(255)" json:"line2"`

	//宛名
	Name string `gorm:"type:varchar(255);not null" json:"name"`

	//電話番号
	Phone string `gorm:"type:varchar(30)" json:"phone"`

	//このユーザーのデフォルト住所か
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// そのユーザーの住所か
func (a Address) BelongsTo(userID int64) bool {
	return userID > 0 && a.UserID == userID
}

var ErrAddressIncomplete = errors.New("address incomplete")

// 前後の空白を落とし、必須項目と列の長さを確認する
func (a *Address) Normalize() error {
	fields := []struct {
		v        *string
		max      int
		required bool
	}{
		{&a.PostalCode, 20, true},
		{&a.Prefecture, 100, true},
		{&a.City, 255, true},
		{&a.Line1, 255, true},
		{&a.Line2, 255, false},
		{&a.Name, 255, true},
		{&a.Phone, 30, false},
	}
	for _, f := range fields {
		*f.v = strings.TrimSpace(*f.v)
		if (f.required && *f.v == "") || utf8.RuneCountInString(*f.v) > f.max {
			return ErrAddressIncomplete
		}
	}
	return nil
}
