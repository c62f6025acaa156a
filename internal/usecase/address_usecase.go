package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecshop/internal/domain/model"
	"ecshop/internal/repository"
)

// 住所の入力（作成・更新共通）
type AddressInput struct {
	PostalCode string `json:"postal_code"`
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
}

func (in AddressInput) toAddress(userID int64) (model.Address, error) {
	a := model.Address{
		UserID:     userID,
		PostalCode: in.PostalCode,
		Prefecture: in.Prefecture,
		City:       in.City,
		Line1:      in.Line1,
		Line2:      in.Line2,
		Name:       in.Name,
		Phone:      in.Phone,
	}
	if err := a.Normalize(); err != nil {
		return model.Address{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return a, nil
}

// 配送先住所の管理。注文時の住所はここで登録したものから選ぶ
type AddressUsecase struct {
	addresses repository.AddressRepository
}

func NewAddressUsecase(addresses repository.AddressRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses}
}

func (u *AddressUsecase) List(ctx context.Context, actor model.Actor) ([]model.Address, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}

	list, err := u.addresses.ListByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, ErrInternal
	}
	return list, nil
}

// 最初の1件はデフォルトになる
func (u *AddressUsecase) Create(ctx context.Context, actor model.Actor, in AddressInput) (model.Address, error) {
	if !actor.Authenticated() {
		return model.Address{}, ErrUnauthorized
	}

	a, err := in.toAddress(actor.UserID)
	if err != nil {
		return model.Address{}, err
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return model.Address{}, ErrInternal
	}
	return created, nil
}

func (u *AddressUsecase) Update(ctx context.Context, actor model.Actor, addressID int64, in AddressInput) (model.Address, error) {
	if err := u.ensureOwned(ctx, actor, addressID); err != nil {
		return model.Address{}, err
	}

	a, err := in.toAddress(actor.UserID)
	if err != nil {
		return model.Address{}, err
	}
	a.ID = addressID
	a.UpdatedAt = time.Now()

	updated, err := u.addresses.Update(ctx, a)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Address{}, ErrNotFound
	}
	if err != nil {
		return model.Address{}, ErrInternal
	}
	return updated, nil
}

// 配達前の注文が使っている住所は消せない（409）
func (u *AddressUsecase) Delete(ctx context.Context, actor model.Actor, addressID int64) error {
	if err := u.ensureOwned(ctx, actor, addressID); err != nil {
		return err
	}

	err := u.addresses.Delete(ctx, actor.UserID, addressID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	}
	return ErrInternal
}

func (u *AddressUsecase) SetDefault(ctx context.Context, actor model.Actor, addressID int64) error {
	if err := u.ensureOwned(ctx, actor, addressID); err != nil {
		return err
	}

	if err := u.addresses.SetDefault(ctx, actor.UserID, addressID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	return nil
}

// 住所が無ければ404、他人のものなら403
func (u *AddressUsecase) ensureOwned(ctx context.Context, actor model.Actor, addressID int64) error {
	if !actor.Authenticated() {
		return ErrUnauthorized
	}
	if addressID <= 0 {
		return ErrValidation
	}

	a, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return ErrInternal
	}
	if !a.BelongsTo(actor.UserID) {
		return ErrForbidden
	}
	return nil
}
