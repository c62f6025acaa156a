package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 購入時点のスナップショット。作成後は更新しない
type OrderItem struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID      int64           `gorm:"not null;index" json:"order_id"`
	ProductID    int64           `gorm:"not null;index" json:"product_id"`
	VariationID  *int64          `gorm:"index" json:"variation_id,omitempty"`
	NameSnapshot string          `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Quantity     decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity"`
	Unit         Unit            `gorm:"type:varchar(10);not null;default:''" json:"unit,omitempty"`
	//在庫から引いた数（キャンセル時に戻す）
	StockUnits int64     `gorm:"not null" json:"-"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 小計（小数2桁に丸める）
func (it OrderItem) Subtotal() decimal.Decimal {
	return LineSubtotal(it.UnitPrice, it.Quantity)
}

// 在庫を戻す先
func (it OrderItem) StockUnit() LineTarget {
	if it.VariationID != nil {
		return VariationTarget(*it.VariationID)
	}
	return ProductTarget(it.ProductID)
}

func LineSubtotal(price, qty decimal.Decimal) decimal.Decimal {
	return price.Mul(qty).Round(2)
}

// 注文合計 = 明細小計の合計
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}
