package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一targetはまとめる（個数は加算、任意量は置き換え）
	Upsert(ctx context.Context, cartID int64, target model.LineTarget, add model.Quantity) error
	UpdateQuantity(ctx context.Context, cartItemID int64, qty model.Quantity) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	// 明細がそのカートに属しているか
	IsInCart(ctx context.Context, cartItemID int64, cartID int64) (bool, error)
}
