package repository

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Create(ctx context.Context, n model.Notification) error {
	return r.db.WithContext(ctx).Create(&n).Error
}

// 新しい順
func (r *NotificationGormRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var list []model.Notification
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return []model.Notification{}, err
	}
	return list, nil
}

func (r *NotificationGormRepository) MarkRead(ctx context.Context, userID, notificationID int64) (model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Notification{}).
			Where("id = ? AND user_id = ?", notificationID, userID).
			Update("read", true)
		if res.Error != nil {
			return res.Error
		}
		//postgresは既読済みの行も一致件数に入る
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return tx.Where("id = ?", notificationID).Take(&n).Error
	})
	if err != nil {
		return model.Notification{}, err
	}
	return n, nil
}

// 既読にした件数
func (r *NotificationGormRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationGormRepository) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// 削除した件数
func (r *NotificationGormRepository) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}
