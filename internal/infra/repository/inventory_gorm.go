package repository

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫を持つテーブル（products / product_variations）
func stockTable(unit model.LineTarget) (interface{}, error) {
	switch unit.Kind {
	case model.TargetProduct:
		return &model.Product{}, nil
	case model.TargetVariation:
		return &model.ProductVariation{}, nil
	default:
		return nil, model.ErrCorruptLineItem
	}
}

// 在庫の現在値
func (r *InventoryGormRepository) StockOf(ctx context.Context, unit model.LineTarget) (int64, error) {
	m, err := stockTable(unit)
	if err != nil {
		return 0, err
	}

	var stocks []int64
	if err := r.db.WithContext(ctx).
		Model(m).
		Where("id = ?", unit.ID).
		Pluck("stock", &stocks).Error; err != nil {
		return 0, err
	}
	if len(stocks) == 0 {
		return 0, repo.ErrNotFound
	}
	return stocks[0], nil
}

// 在庫の現在値を設定
func (r *InventoryGormRepository) SetStock(ctx context.Context, unit model.LineTarget, newStock int64) error {
	m, err := stockTable(unit)
	if err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Model(m).
		Where("id = ?", unit.ID).
		Update("stock", newStock)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 在庫が足りるときだけ減らす（チェックと減算を1文で行う）
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, unit model.LineTarget, qty int64) (bool, error) {
	m, err := stockTable(unit)
	if err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).
		Model(m).
		Where("id = ? AND stock >= ?", unit.ID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// 在庫戻し（キャンセル）
func (r *InventoryGormRepository) IncreaseStock(ctx context.Context, unit model.LineTarget, qty int64) error {
	m, err := stockTable(unit)
	if err != nil {
		return err
	}

	//削除済み商品にも戻す
	res := r.db.WithContext(ctx).
		Unscoped().
		Model(m).
		Where("id = ?", unit.ID).
		Update("stock", gorm.Expr("stock + ?", qty))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
