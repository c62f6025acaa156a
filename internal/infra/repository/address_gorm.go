package repository

import (
	"context"
	"errors"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AddressGormRepository struct {
	db *gorm.DB
}

// DI
func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

func (r *AddressGormRepository) Create(ctx context.Context, address model.Address) (model.Address, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Address{}).Where("user_id = ?", address.UserID).Count(&count).Error; err != nil {
			return err
		}
		address.IsDefault = count == 0
		return tx.Create(&address).Error
	})
	if err != nil {
		return model.Address{}, err
	}
	return address, nil
}

func (r *AddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var list []model.Address
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AddressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	return findAddress(r.db.WithContext(ctx), addressID)
}

func findAddress(q *gorm.DB, addressID int64) (model.Address, error) {
	var a model.Address
	err := q.First(&a, addressID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Address{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Address{}, err
	}
	return a, nil
}

func (r *AddressGormRepository) Update(ctx context.Context, address model.Address) (model.Address, error) {
	var updated model.Address
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", address.ID, address.UserID).
			Select("postal_code", "prefecture", "city", "line1", "line2", "name", "phone", "updated_at").
			Updates(address)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		var err error
		updated, err = findAddress(tx, address.ID)
		return err
	})
	if err != nil {
		return model.Address{}, err
	}
	return updated, nil
}

// 配達が終わっていない注文
var openOrderStatuses = []model.OrderStatus{
	model.OrderStatusPending,
	model.OrderStatusPaid,
	model.OrderStatusShipped,
}

func (r *AddressGormRepository) Delete(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//同時にSetDefaultされないように行ロック
		var a model.Address
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", addressID, userID).
			First(&a).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.ErrNotFound
		}
		if err != nil {
			return err
		}

		var inUse int64
		if err := tx.Model(&model.Order{}).
			Where("address_id = ? AND status IN ?", addressID, openOrderStatuses).
			Count(&inUse).Error; err != nil {
			return err
		}
		if inUse > 0 {
			return repo.ErrConflict
		}

		if err := tx.Delete(&model.Address{}, addressID).Error; err != nil {
			return err
		}
		if !a.IsDefault {
			return nil
		}

		//一番古い住所をデフォルトに繰り上げ（無ければそのまま）
		var next model.Address
		err = tx.Where("user_id = ?", userID).Order("id ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&model.Address{}).Where("id = ?", next.ID).Update("is_default", true).Error
	})
}

func (r *AddressGormRepository) SetDefault(ctx context.Context, userID, addressID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Address{}).
			Where("id = ? AND user_id = ?", addressID, userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repo.ErrNotFound
		}

		//指定住所だけ true、それ以外は false を1文で
		return tx.Model(&model.Address{}).
			Where("user_id = ?", userID).
			Update("is_default", gorm.Expr("id = ?", addressID)).Error
	})
}
