package repository

import (
	"context"
	"errors"

	"ecshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")
	// 一意制約違反（同時作成など）
	ErrConflict = errors.New("conflict")
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

// 商品・バリエーションの永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error

	FindVariationByID(ctx context.Context, id int64) (model.ProductVariation, error)
	ListVariations(ctx context.Context, productID int64) ([]model.ProductVariation, error)
	CreateVariation(ctx context.Context, v model.ProductVariation) (model.ProductVariation, error)
}
