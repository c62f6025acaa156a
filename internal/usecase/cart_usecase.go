package usecase

import (
	"context"
	"errors"
	"net/http"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartUsecase は /cart の業務ロジックです。
// ログイン済みならユーザーのカート、未ログインならセッションのカートを使います。
type CartUsecase struct {
	tx           repo.TransactionManager
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	log          *zap.Logger
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	log *zap.Logger,
) *CartUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CartUsecase{
		tx:           tx,
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		log:          log,
	}
}

type CartItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	VariationID *int64          `json:"variation_id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    model.Quantity  `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	//非公開・削除済みになった明細は false（合計に含めない）
	Available bool `json:"available"`
}

type CartResponse struct {
	ID    int64              `json:"id"`
	Items []CartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

// VariationID があればバリエーション、無ければ商品をカートに入れる
type AddCartInput struct {
	ProductID   int64
	VariationID int64
	Quantity    model.Quantity
}

type UpdateCartItemInput struct {
	Quantity model.Quantity
}

// Resolve はリクエストの主体のカートを返す（無ければ作成）。
func (u *CartUsecase) Resolve(ctx context.Context, actor model.Actor) (model.Cart, error) {
	return resolveCart(ctx, u.cartRepo, actor)
}

func resolveCart(ctx context.Context, carts repo.CartRepository, actor model.Actor) (model.Cart, error) {
	var (
		cart model.Cart
		err  error
	)
	switch {
	case actor.Authenticated():
		cart, err = carts.GetOrCreateByUserID(ctx, actor.UserID)
	case actor.SessionKey != "":
		cart, err = carts.GetOrCreateBySessionKey(ctx, actor.SessionKey)
	default:
		return model.Cart{}, NewHTTPError(http.StatusBadRequest, "session required")
	}
	if err != nil {
		return model.Cart{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cart, nil
}

// GetCart はカート取得（無ければ作って空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, actor model.Actor) (CartResponse, error) {
	cart, err := u.Resolve(ctx, actor)
	if err != nil {
		return CartResponse{}, err
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// AddItem はカートに追加（同じ商品/バリエーションは1行にまとめる）。
func (u *CartUsecase) AddItem(ctx context.Context, actor model.Actor, in AddCartInput) (CartResponse, error) {
	if err := in.Quantity.Validate(); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target, err := u.targetOf(ctx, in)
	if err != nil {
		return CartResponse{}, err
	}

	//公開中か・在庫があるか
	line, err := resolveTarget(ctx, u.productRepo, target)
	if err != nil {
		return CartResponse{}, u.wrap(err)
	}

	cart, err := u.Resolve(ctx, actor)
	if err != nil {
		return CartResponse{}, err
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	merged := in.Quantity
	for _, it := range items {
		if it.Target == target {
			merged, err = it.Qty.Merge(in.Quantity)
			if err != nil {
				return CartResponse{}, NewHTTPError(http.StatusBadRequest, err.Error())
			}
			break
		}
	}
	if merged.StockUnits() > line.Stock {
		return CartResponse{}, &model.InsufficientStockError{Unit: target, Requested: merged.StockUnits(), Available: line.Stock}
	}

	if err := u.cartItemRepo.Upsert(ctx, cart.ID, target, in.Quantity); err != nil {
		if errors.Is(err, model.ErrInvalidQuantity) || errors.Is(err, model.ErrInvalidUnit) {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 入力から購入単位を決める。バリエーションは指定された商品のものに限る
func (u *CartUsecase) targetOf(ctx context.Context, in AddCartInput) (model.LineTarget, error) {
	if in.VariationID > 0 {
		if in.ProductID > 0 {
			v, err := u.productRepo.FindVariationByID(ctx, in.VariationID)
			if errors.Is(err, repo.ErrNotFound) {
				return model.LineTarget{}, &model.UnitUnavailableError{Unit: model.VariationTarget(in.VariationID)}
			}
			if err != nil {
				return model.LineTarget{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if v.ProductID != in.ProductID {
				return model.LineTarget{}, NewHTTPError(http.StatusBadRequest, "variation does not belong to product")
			}
		}
		return model.VariationTarget(in.VariationID), nil
	}
	if in.ProductID > 0 {
		return model.ProductTarget(in.ProductID), nil
	}
	return model.LineTarget{}, NewHTTPError(http.StatusBadRequest, "product_id or variation_id required")
}

// UpdateItem は数量変更（0以下なら明細を削除）。
func (u *CartUsecase) UpdateItem(ctx context.Context, actor model.Actor, cartItemID int64, in UpdateCartItemInput) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if !in.Quantity.Effective().IsPositive() {
		return u.DeleteItem(ctx, actor, cartItemID)
	}
	if err := in.Quantity.Validate(); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cart, err := u.Resolve(ctx, actor)
	if err != nil {
		return CartResponse{}, err
	}
	if err := u.ensureInCart(ctx, cartItemID, cart.ID); err != nil {
		return CartResponse{}, err
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//在庫チェック
	line, err := resolveTarget(ctx, u.productRepo, item.Target)
	if err != nil {
		return CartResponse{}, u.wrap(err)
	}
	if in.Quantity.StockUnits() > line.Stock {
		return CartResponse{}, &model.InsufficientStockError{Unit: item.Target, Requested: in.Quantity.StockUnits(), Available: line.Stock}
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除
func (u *CartUsecase) DeleteItem(ctx context.Context, actor model.Actor, cartItemID int64) (CartResponse, error) {
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cart, err := u.Resolve(ctx, actor)
	if err != nil {
		return CartResponse{}, err
	}
	if err := u.ensureInCart(ctx, cartItemID, cart.ID); err != nil {
		return CartResponse{}, err
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 他人のカートの明細は「存在しない扱い」にする
func (u *CartUsecase) ensureInCart(ctx context.Context, cartItemID, cartID int64) error {
	ok, err := u.cartItemRepo.IsInCart(ctx, cartItemID, cartID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	return nil
}

// MergeSessionCart はログイン前のセッションカートをユーザーのカートに移す。
// 同じ商品/バリエーションの明細はまとめ、セッションカートは削除する。
func (u *CartUsecase) MergeSessionCart(ctx context.Context, actor model.Actor) (CartResponse, error) {
	if !actor.Authenticated() {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var userCartID int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		userCart, err := r.Carts().GetOrCreateByUserID(ctx, actor.UserID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		userCartID = userCart.ID

		if actor.SessionKey == "" {
			return nil
		}
		sessionCart, err := r.Carts().FindBySessionKey(ctx, actor.SessionKey)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.CartItems().ListByCartID(ctx, sessionCart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		for _, it := range items {
			if err := r.CartItems().Upsert(ctx, userCart.ID, it.Target, it.Qty); err != nil {
				if errors.Is(err, model.ErrInvalidQuantity) {
					return NewHTTPError(http.StatusBadRequest, err.Error())
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		if err := r.Carts().Delete(ctx, sessionCart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		u.log.Info("session cart merged",
			zap.Int64("user_id", actor.UserID),
			zap.Int64("cart_id", userCart.ID),
			zap.Int("lines", len(items)),
		)
		return nil
	})
	if err != nil {
		return CartResponse{}, err
	}

	return u.buildCartResponse(ctx, userCartID)
}

// cartIDの明細を現在価格で解決してCartResponseを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	total := decimal.Zero

	for _, it := range items {
		line, err := materializeLine(ctx, u.productRepo, it)
		if err != nil {
			var unavailable *model.UnitUnavailableError
			if !errors.As(err, &unavailable) && !errors.Is(err, model.ErrCorruptLineItem) {
				return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			respItems = append(respItems, CartItemResponse{
				ID:       it.ID,
				Quantity: it.Qty,
				Price:    decimal.Zero,
				Subtotal: decimal.Zero,
			})
			continue
		}

		subtotal := line.Subtotal()
		respItems = append(respItems, CartItemResponse{
			ID:          it.ID,
			ProductID:   line.ProductID,
			VariationID: line.VariationID,
			Name:        line.Name,
			Price:       line.Price,
			Quantity:    it.Qty,
			Subtotal:    subtotal,
			Available:   true,
		})
		total = total.Add(subtotal)
	}

	return CartResponse{ID: cartID, Items: respItems, Total: total}, nil
}

// ドメインエラー以外はDBエラー扱い
func (u *CartUsecase) wrap(err error) error {
	if isDomainError(err) {
		return err
	}
	u.log.Error("cart: unexpected error", zap.Error(err))
	return NewHTTPError(http.StatusInternalServerError, "db error")
}
