package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

// 在庫は商品・バリエーションごとに持つ。unit でどちらかを指定する
type InventoryRepository interface {
	StockOf(ctx context.Context, unit model.LineTarget) (int64, error)

	// 在庫の現在値を設定
	SetStock(ctx context.Context, unit model.LineTarget, newStock int64) error

	// 在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, unit model.LineTarget, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, unit model.LineTarget, qty int64) error

	// 調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
