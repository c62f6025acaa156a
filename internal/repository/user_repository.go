package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	// IDからユーザーを1件取得する。見つからなければ nil, nil
	FindByID(ctx context.Context, userID int64) (*model.User, error)
}
