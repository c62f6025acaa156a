package model

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

type QuantityKind string

const (
	QuantityCount  QuantityKind = "count"
	QuantityCustom QuantityKind = "custom"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidUnit     = errors.New("invalid unit")
)

// qty_custom は numeric(10,2)
var maxCustom = decimal.RequireFromString("99999999.99")

// 個数、または任意の量＋単位（250 g など）。どちらか一方だけが有効
type Quantity struct {
	Kind   QuantityKind    `gorm:"column:qty_kind;type:varchar(10);not null" json:"kind"`
	Count  int64           `gorm:"column:qty_count;not null;default:0" json:"count,omitempty"`
	Custom decimal.Decimal `gorm:"column:qty_custom;type:numeric(10,2);not null;default:0" json:"custom,omitempty"`
	Unit   Unit            `gorm:"column:qty_unit;type:varchar(10);not null;default:''" json:"unit,omitempty"`
}

func Count(n int64) Quantity {
	return Quantity{Kind: QuantityCount, Count: n}
}

func Custom(amount decimal.Decimal, unit Unit) Quantity {
	return Quantity{Kind: QuantityCustom, Custom: amount, Unit: unit}
}

// 明細の作成・更新時とcheckout時に呼ぶ
func (q Quantity) Validate() error {
	switch q.Kind {
	case QuantityCount:
		if q.Count < 1 {
			return ErrInvalidQuantity
		}
		return nil
	case QuantityCustom:
		//小数3桁以上はDBで丸められて0になりうる
		if !q.Custom.IsPositive() || !q.Custom.Equal(q.Custom.Round(2)) || q.Custom.GreaterThan(maxCustom) {
			return ErrInvalidQuantity
		}
		if !q.Unit.Valid() {
			return ErrInvalidUnit
		}
		return nil
	default:
		return ErrInvalidQuantity
	}
}

// 金額計算に使う量
func (q Quantity) Effective() decimal.Decimal {
	if q.Kind == QuantityCustom {
		return q.Custom
	}
	return decimal.NewFromInt(q.Count)
}

// 在庫から引く数。任意量は切り上げ
func (q Quantity) StockUnits() int64 {
	if q.Kind == QuantityCustom {
		return q.Custom.Ceil().IntPart()
	}
	return q.Count
}

// 同じtargetへの追加。個数同士は加算、それ以外は新しい方で置き換える
func (q Quantity) Merge(add Quantity) (Quantity, error) {
	if err := add.Validate(); err != nil {
		return Quantity{}, err
	}
	if q.Kind != QuantityCount || add.Kind != QuantityCount {
		return add, nil
	}
	//加算でint64があふれたら負数になる
	if q.Count < 0 || add.Count > math.MaxInt64-q.Count {
		return Quantity{}, ErrInvalidQuantity
	}
	return Count(q.Count + add.Count), nil
}
