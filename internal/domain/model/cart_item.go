package model

import "time"

type TargetKind string

const (
	TargetProduct   TargetKind = "product"
	TargetVariation TargetKind = "variation"
)

// カート明細が指す購入単位。商品かバリエーションのどちらか一方
type LineTarget struct {
	Kind TargetKind `gorm:"column:target_kind;type:varchar(10);not null;uniqueIndex:idx_cart_item_target,priority:2" json:"kind"`
	ID   int64      `gorm:"column:target_id;not null;uniqueIndex:idx_cart_item_target,priority:3" json:"id"`
}

func ProductTarget(productID int64) LineTarget {
	return LineTarget{Kind: TargetProduct, ID: productID}
}

func VariationTarget(variationID int64) LineTarget {
	return LineTarget{Kind: TargetVariation, ID: variationID}
}

func (t LineTarget) Valid() bool {
	if t.ID <= 0 {
		return false
	}
	return t.Kind == TargetProduct || t.Kind == TargetVariation
}

// カートの明細。同じカートに同じtargetは1行だけ
type CartItem struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64      `gorm:"not null;index;uniqueIndex:idx_cart_item_target,priority:1" json:"cart_id"`
	Target    LineTarget `gorm:"embedded" json:"target"`
	Qty       Quantity   `gorm:"embedded" json:"quantity"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
