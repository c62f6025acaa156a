package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 注文確定の結果を数える（prometheus）
type CheckoutObserver interface {
	ObserveCheckout(outcome string)
}

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	log       *zap.Logger
	observer  CheckoutObserver
}

func NewOrderUsecase(tx repo.TransactionManager, addresses repo.AddressRepository, log *zap.Logger, observer CheckoutObserver) *OrderUsecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderUsecase{tx: tx, addresses: addresses, log: log, observer: observer}
}

type PlaceOrderInput struct {
	AddressID      int64
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID   int64           `json:"product_id"`
	VariationID *int64          `json:"variation_id,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        model.Unit      `json:"unit,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	AddressID      int64             `json:"address_id"`
	DeliveryUserID *int64            `json:"delivery_user_id,omitempty"`
	Status         string            `json:"status"`
	Total          decimal.Decimal   `json:"total"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

// 同じ冪等キーの注文が同時に作られた
var errIdempotencyRace = errors.New("idempotency key race")

// PlaceOrder はカートから注文を作る。
// 注文作成・在庫減算・明細作成・合計・カートのクリアは1トランザクションで行い、失敗したら全部戻す。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor model.Actor, in PlaceOrderInput) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	userID := actor.UserID

	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	addressID, err := u.checkAddress(ctx, userID, in.AddressID)
	if err != nil {
		u.observe("invalid_address")
		return OrderOutput{}, err
	}

	var out OrderOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同じキーなら同じ結果
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return err
			}
			if found {
				items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
				if err != nil {
					return err
				}
				out = toOrderOutput(existing, items)
				return nil
			}
		}

		//カート行をロックしてから明細を読む
		cart, err := r.Carts().FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return model.ErrEmptyCart
		}
		if err != nil {
			return err
		}
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return model.ErrEmptyCart
		}

		//ヘッダーは pending / 合計0 で作り、最後に合計を入れる
		order := model.Order{
			UserID:    userID,
			AddressID: addressID,
			Status:    model.OrderStatusPending,
			Total:     decimal.Zero,
		}
		if key != "" {
			order.IdempotencyKey = &key
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//一意制約で負けたときだけ、先にできた注文を読みに行く
			if key != "" && errors.Is(err, repo.ErrConflict) {
				return fmt.Errorf("%w: %v", errIdempotencyRace, err)
			}
			return err
		}
		order.ID = orderID

		orderItems := make([]model.OrderItem, 0, len(cartItems))
		for _, ci := range cartItems {
			line, err := materializeLine(ctx, r.Products(), ci)
			if err != nil {
				return err
			}
			//在庫はチェックと減算を1文で
			if err := debitStock(ctx, r.Inventory(), line.Target, line.StockUnits); err != nil {
				return err
			}
			orderItems = append(orderItems, line.toOrderItem())
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return err
		}

		order.Total = model.SumItems(orderItems)
		if err := r.Orders().UpdateTotal(ctx, orderID, order.Total); err != nil {
			return err
		}

		//明細だけ消す（カートは残す）
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return err
		}

		order.CreatedAt = time.Now()
		for i := range orderItems {
			orderItems[i].OrderID = orderID
		}
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if errors.Is(err, errIdempotencyRace) {
		//先に確定した方の注文を返す
		return u.findByIdempotencyKey(ctx, userID, key)
	}
	if err != nil {
		u.observe(checkoutOutcome(err))
		if isDomainError(err) {
			return OrderOutput{}, err
		}
		u.log.Error("place order failed", zap.Int64("user_id", userID), zap.Error(err))
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.observe("placed")
	u.log.Info("order placed",
		zap.Int64("order_id", out.ID),
		zap.Int64("user_id", userID),
		zap.String("total", out.Total.StringFixed(2)),
		zap.Int("items", len(out.Items)),
	)
	return out, nil
}

// address_idの存在確認＋所有チェック。未指定ならデフォルト住所を使う
func (u *OrderUsecase) checkAddress(ctx context.Context, userID, addressID int64) (int64, error) {
	if addressID == 0 {
		return u.defaultAddress(ctx, userID)
	}
	if addressID < 0 {
		return 0, fmt.Errorf("%w: %w", model.ErrInvalidAddress, ErrValidation)
	}
	addr, err := u.addresses.FindByID(ctx, addressID)
	if errors.Is(err, repo.ErrNotFound) {
		return 0, fmt.Errorf("%w: %w", model.ErrInvalidAddress, ErrNotFound)
	}
	if err != nil {
		u.log.Error("find address failed", zap.Int64("address_id", addressID), zap.Error(err))
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//他人の住所
	if !addr.BelongsTo(userID) {
		return 0, fmt.Errorf("%w: %w", model.ErrInvalidAddress, ErrForbidden)
	}
	return addr.ID, nil
}

func (u *OrderUsecase) defaultAddress(ctx context.Context, userID int64) (int64, error) {
	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		u.log.Error("list addresses failed", zap.Int64("user_id", userID), zap.Error(err))
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, a := range list {
		if a.IsDefault {
			return a.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %w", model.ErrInvalidAddress, ErrValidation)
}

func (u *OrderUsecase) findByIdempotencyKey(ctx context.Context, userID int64, key string) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !found {
			//他ユーザーが同じキーを使っている
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(o, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) observe(outcome string) {
	if u.observer != nil {
		u.observer.ObserveCheckout(outcome)
	}
}

func checkoutOutcome(err error) string {
	var stockErr *model.InsufficientStockError
	var unitErr *model.UnitUnavailableError
	switch {
	case errors.Is(err, model.ErrEmptyCart):
		return "empty_cart"
	case errors.As(err, &stockErr):
		return "insufficient_stock"
	case errors.As(err, &unitErr):
		return "unit_unavailable"
	case errors.Is(err, model.ErrCorruptLineItem):
		return "corrupt_line_item"
	}
	return "error"
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, actor model.Actor) ([]OrderOutput, error) {
	if !actor.Authenticated() {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまずは固定で取る
	return u.listWithItems(ctx, func(r repo.TxRepos) ([]model.Order, error) {
		orders, _, err := r.Orders().ListByUserID(ctx, actor.UserID, 1, 50)
		return orders, err
	})
}

// 配達担当に割り当てられた注文
func (u *OrderUsecase) ListAssigned(ctx context.Context, actor model.Actor) ([]OrderOutput, error) {
	if !actor.Authenticated() {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleDelivery {
		return []OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	return u.listWithItems(ctx, func(r repo.TxRepos) ([]model.Order, error) {
		orders, _, err := r.Orders().ListByDeliveryUserID(ctx, actor.UserID, 1, 50)
		return orders, err
	})
}

func (u *OrderUsecase) listWithItems(ctx context.Context, list func(r repo.TxRepos) ([]model.Order, error)) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := list(r)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, actor model.Actor, orderID int64) (OrderOutput, error) {
	if !actor.Authenticated() {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//他人の注文は「存在しない扱い」にする（担当の配達員は見られる）
		if o.UserID != actor.UserID && !(actor.Role == model.RoleDelivery && o.IsAssignedTo(actor.UserID)) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID:   it.ProductID,
			VariationID: it.VariationID,
			Name:        it.NameSnapshot,
			Price:       it.UnitPrice,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Subtotal:    it.Subtotal(),
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		AddressID:      o.AddressID,
		DeliveryUserID: o.DeliveryUserID,
		Status:         string(o.Status),
		Total:          o.Total,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
