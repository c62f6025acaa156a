package repository

import (
	"context"
	"errors"

	"ecshop/internal/domain/model"
	"ecshop/internal/infra/db"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.getOrCreate(ctx, "user_id = ?", userID, model.NewUserCart(userID))
}

// セッションのカートを取得し、無ければ作成
func (r *CartGormRepository) GetOrCreateBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error) {
	return r.getOrCreate(ctx, "session_key = ? AND user_id IS NULL", sessionKey, model.NewSessionCart(sessionKey))
}

// 探す→無ければ作る。同時に作られたらuniqueで弾かれるので取り直す
func (r *CartGormRepository) getOrCreate(ctx context.Context, where string, arg interface{}, newCart model.Cart) (model.Cart, error) {
	var cart model.Cart

	findErr := r.db.WithContext(ctx).Where(where, arg).First(&cart).Error
	if findErr == nil {
		return cart, nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return model.Cart{}, findErr
	}

	//tx内でも失敗をsavepointで閉じ込める
	createErr := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&newCart).Error
	})
	if createErr == nil {
		return newCart, nil
	}
	if !db.IsUniqueViolation(createErr) {
		return model.Cart{}, createErr
	}

	if err := r.db.WithContext(ctx).Where(where, arg).First(&cart).Error; err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	return r.find(ctx, "user_id = ?", userID)
}

// 同じユーザーのcheckoutはここで直列になる
func (r *CartGormRepository) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

func (r *CartGormRepository) FindBySessionKey(ctx context.Context, sessionKey string) (model.Cart, error) {
	return r.find(ctx, "session_key = ? AND user_id IS NULL", sessionKey)
}

func (r *CartGormRepository) find(ctx context.Context, where string, arg interface{}) (model.Cart, error) {
	var cart model.Cart

	err := r.db.WithContext(ctx).Where(where, arg).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// 指定カートの明細を全削除（cart行は残す）
func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Cart{}).Where("id = ?", cartID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return repo.ErrNotFound
	}

	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}

// カートごと削除（セッションカートをマージした後）
func (r *CartGormRepository) Delete(ctx context.Context, cartID int64) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&model.Cart{}, cartID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カート明細を一覧取得
func (r *CartGormRepository) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.CartItem{}, err
	}

	return items, nil
}

// 同一targetはまとめる
func (r *CartGormRepository) Upsert(ctx context.Context, cartID int64, target model.LineTarget, add model.Quantity) error {
	if !target.Valid() {
		return model.ErrCorruptLineItem
	}
	if err := add.Validate(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.CartItem

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("cart_id = ? AND target_kind = ? AND target_id = ?", cartID, target.Kind, target.ID).
			First(&item).Error

		if err == nil {
			// 既存ありだったら数量をまとめる
			merged, err := item.Qty.Merge(add)
			if err != nil {
				return err
			}
			return updateQty(tx, item.ID, merged)
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成
		newItem := model.CartItem{
			CartID: cartID,
			Target: target,
			Qty:    add,
		}
		return tx.Create(&newItem).Error
	})
}

// 明細の数量を更新
func (r *CartGormRepository) UpdateQuantity(ctx context.Context, cartItemID int64, qty model.Quantity) error {
	if err := qty.Validate(); err != nil {
		return err
	}
	return updateQty(r.db.WithContext(ctx), cartItemID, qty)
}

// 個数と任意量は排他なので4列まとめて書く
func updateQty(tx *gorm.DB, cartItemID int64, qty model.Quantity) error {
	res := tx.Model(&model.CartItem{}).
		Where("id = ?", cartItemID).
		Updates(map[string]interface{}{
			"qty_kind":   qty.Kind,
			"qty_count":  qty.Count,
			"qty_custom": qty.Custom,
			"qty_unit":   qty.Unit,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *CartGormRepository) DeleteByID(ctx context.Context, cartItemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartItem{}, cartItemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を取得
func (r *CartGormRepository) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	var item model.CartItem

	err := r.db.WithContext(ctx).
		Where("id = ?", cartItemID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartItem{}, err
	}
	return item, nil
}

//cartItemが、そのカートに属しているかを判定

func (r *CartGormRepository) IsInCart(ctx context.Context, cartItemID int64, cartID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("id = ? AND cart_id = ?", cartItemID, cartID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
