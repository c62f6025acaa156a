package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

// ログイン済みユーザーのほしい物リスト
type WishlistUsecase struct {
	wishlist repo.WishlistRepository
	products repo.ProductRepository
}

func NewWishlistUsecase(wishlist repo.WishlistRepository, products repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlist: wishlist, products: products}
}

type WishlistEntry struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	//非公開・削除済みの商品は false
	Available bool      `json:"available"`
	AddedAt   time.Time `json:"added_at"`
}

type WishlistStatus struct {
	ProductID  int64 `json:"product_id"`
	InWishlist bool  `json:"in_wishlist"`
}

func (u *WishlistUsecase) List(ctx context.Context, actor model.Actor) ([]WishlistEntry, error) {
	if !actor.Authenticated() {
		return []WishlistEntry{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	items, err := u.wishlist.ListByUserID(ctx, actor.UserID)
	if err != nil {
		return []WishlistEntry{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]WishlistEntry, 0, len(items))
	for _, it := range items {
		entry := WishlistEntry{ID: it.ID, ProductID: it.ProductID, Price: decimal.Zero, AddedAt: it.AddedAt}
		p, err := u.products.FindByID(ctx, it.ProductID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
		case err != nil:
			return []WishlistEntry{}, NewHTTPError(http.StatusInternalServerError, "db error")
		default:
			entry.Name = p.Name
			entry.Price = p.Price
			entry.Available = p.IsActive
		}
		out = append(out, entry)
	}
	return out, nil
}

// 公開中の商品だけ追加できる
func (u *WishlistUsecase) Add(ctx context.Context, actor model.Actor, productID int64) (WishlistEntry, error) {
	if !actor.Authenticated() {
		return WishlistEntry{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistEntry{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	p, err := u.products.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return WishlistEntry{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return WishlistEntry{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	item, err := u.wishlist.Add(ctx, actor.UserID, productID)
	if errors.Is(err, repo.ErrConflict) {
		return WishlistEntry{}, NewHTTPError(http.StatusConflict, "already in wishlist")
	}
	if err != nil {
		return WishlistEntry{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return WishlistEntry{
		ID:        item.ID,
		ProductID: productID,
		Name:      p.Name,
		Price:     p.Price,
		Available: true,
		AddedAt:   item.AddedAt,
	}, nil
}

func (u *WishlistUsecase) Remove(ctx context.Context, actor model.Actor, productID int64) error {
	if !actor.Authenticated() {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	err := u.wishlist.Remove(ctx, actor.UserID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not in wishlist")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *WishlistUsecase) Status(ctx context.Context, actor model.Actor, productID int64) (WishlistStatus, error) {
	if !actor.Authenticated() {
		return WishlistStatus{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistStatus{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	ok, err := u.wishlist.Contains(ctx, actor.UserID, productID)
	if err != nil {
		return WishlistStatus{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return WishlistStatus{ProductID: productID, InWishlist: ok}, nil
}
