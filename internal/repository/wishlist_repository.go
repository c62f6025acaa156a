package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type WishlistRepository interface {
	// 追加済みならErrConflict
	Add(ctx context.Context, userID, productID int64) (model.WishlistItem, error)
	// 無ければErrNotFound
	Remove(ctx context.Context, userID, productID int64) error
	// 新しい順
	ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error)
	Contains(ctx context.Context, userID, productID int64) (bool, error)
}
