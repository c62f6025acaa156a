package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type CartRepository interface {
	// ユーザーのカートを取得し、無ければ作成
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 未ログインのセッションのカートを取得し、無ければ作成
	GetOrCreateBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 行ロック付き（checkoutで同じカートを二重に注文しないため）
	FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error)
	FindBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error)
	// 明細だけ全削除（cart行は残す）
	Clear(ctx context.Context, cartID int64) error
	Delete(ctx context.Context, cartID int64) error
}
