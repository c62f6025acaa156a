package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

// 配送先住所の保存・取得
type AddressRepository interface {
	// ユーザーの最初の住所は自動でデフォルトになる
	Create(ctx context.Context, address model.Address) (model.Address, error)

	// デフォルトが先頭、あとは古い順
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	// 宛先の項目だけ更新（所有者とデフォルトは変えない）
	Update(ctx context.Context, address model.Address) (model.Address, error)

	// 未完了の注文が使っている住所は ErrConflict。
	// デフォルトを消したら一番古い住所を繰り上げる
	Delete(ctx context.Context, userID, addressID int64) error

	// user内でデフォルトは1つ
	SetDefault(ctx context.Context, userID, addressID int64) error
}
