package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	//定価（price以上）。未指定ならpriceと同じ
	OriginalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"original_price"`
	Stock         int64           `gorm:"not null;check:stock >= 0" json:"stock"`
	//表示用の単位（"1 kg" など）
	Unit      string         `gorm:"type:varchar(50);not null;default:'1 kg'" json:"unit"`
	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Variations []ProductVariation `gorm:"foreignKey:ProductID" json:"variations,omitempty"`
}

// 商品の量違いSKU（"500 g" など）。在庫は商品とは別に持つ。
type ProductVariation struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64           `gorm:"not null;uniqueIndex:idx_variation_amount_unit" json:"product_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null;uniqueIndex:idx_variation_amount_unit" json:"amount"`
	Unit          Unit            `gorm:"type:varchar(10);not null;uniqueIndex:idx_variation_amount_unit" json:"unit"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	OriginalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"original_price"`
	Stock         int64           `gorm:"not null;check:stock >= 0" json:"stock"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// "500 g" のような表示名
func (v ProductVariation) DisplayName() string {
	return v.Amount.String() + " " + string(v.Unit)
}

// originalが未指定(0)ならpriceに揃える。original < price はエラー
func NormalizeOriginalPrice(price, original decimal.Decimal) (decimal.Decimal, bool) {
	if original.IsZero() {
		return price, true
	}
	if original.LessThan(price) {
		return original, false
	}
	return original, true
}
