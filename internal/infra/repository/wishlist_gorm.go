package repository

import (
	"context"

	"ecshop/internal/domain/model"
	"ecshop/internal/infra/db"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type WishlistGormRepository struct {
	db *gorm.DB
}

func NewWishlistGormRepository(db *gorm.DB) *WishlistGormRepository {
	return &WishlistGormRepository{db: db}
}

func (r *WishlistGormRepository) Add(ctx context.Context, userID, productID int64) (model.WishlistItem, error) {
	item := model.WishlistItem{UserID: userID, ProductID: productID}
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return model.WishlistItem{}, repo.ErrConflict
		}
		return model.WishlistItem{}, err
	}
	return item, nil
}

func (r *WishlistGormRepository) Remove(ctx context.Context, userID, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *WishlistGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.WishlistItem, error) {
	items := []model.WishlistItem{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *WishlistGormRepository) Contains(ctx context.Context, userID, productID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error
	return n > 0, err
}
