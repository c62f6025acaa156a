package usecase

import (
	"context"
	"errors"
	"fmt"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

// カート明細を「在庫を引く単位・現在価格・数量」に解決したもの
type resolvedLine struct {
	Target      model.LineTarget
	ProductID   int64
	VariationID *int64
	Name        string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	QtyUnit     model.Unit
	StockUnits  int64
	Stock       int64
}

func (l resolvedLine) Subtotal() decimal.Decimal {
	return model.LineSubtotal(l.Price, l.Quantity)
}

func (l resolvedLine) toOrderItem() model.OrderItem {
	return model.OrderItem{
		ProductID:    l.ProductID,
		VariationID:  l.VariationID,
		NameSnapshot: l.Name,
		UnitPrice:    l.Price,
		Quantity:     l.Quantity,
		Unit:         l.QtyUnit,
		StockUnits:   l.StockUnits,
	}
}

// 明細のtargetを解決する。商品でもバリエーションでもない明細はエラー
func materializeLine(ctx context.Context, products repo.ProductRepository, item model.CartItem) (resolvedLine, error) {
	line, err := resolveTarget(ctx, products, item.Target)
	if err != nil {
		return resolvedLine{}, err
	}

	//数量0以下の行で在庫が増えないように
	if err := item.Qty.Validate(); err != nil {
		return resolvedLine{}, fmt.Errorf("%w: %v", model.ErrCorruptLineItem, err)
	}

	line.Quantity = item.Qty.Effective()
	line.StockUnits = item.Qty.StockUnits()
	if item.Qty.Kind == model.QuantityCustom {
		line.QtyUnit = item.Qty.Unit
	}
	return line, nil
}

func resolveTarget(ctx context.Context, products repo.ProductRepository, target model.LineTarget) (resolvedLine, error) {
	switch target.Kind {
	case model.TargetProduct:
		p, err := products.FindByID(ctx, target.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return resolvedLine{}, &model.UnitUnavailableError{Unit: target}
		}
		if err != nil {
			return resolvedLine{}, err
		}
		if !p.IsActive {
			return resolvedLine{}, &model.UnitUnavailableError{Unit: target}
		}
		return resolvedLine{
			Target:    target,
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
		}, nil

	case model.TargetVariation:
		v, err := products.FindVariationByID(ctx, target.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return resolvedLine{}, &model.UnitUnavailableError{Unit: target}
		}
		if err != nil {
			return resolvedLine{}, err
		}
		if !v.IsActive {
			return resolvedLine{}, &model.UnitUnavailableError{Unit: target}
		}
		//親商品が非公開・削除済みなら買えない
		p, err := products.FindByID(ctx, v.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return resolvedLine{}, &model.UnitUnavailableError{Unit: target}
		}
		if err != nil {
			return resolvedLine{}, err
		}
		if !p.IsActive {
			return resolvedLine{}, &model.UnitUnavailableError{Unit: target}
		}
		variationID := v.ID
		return resolvedLine{
			Target:      target,
			ProductID:   p.ID,
			VariationID: &variationID,
			Name:        fmt.Sprintf("%s (%s)", p.Name, v.DisplayName()),
			Price:       v.Price,
			Stock:       v.Stock,
		}, nil
	}

	return resolvedLine{}, fmt.Errorf("%w: target kind %q", model.ErrCorruptLineItem, target.Kind)
}

// 在庫を条件付きで減らす。足りなければ現在庫を読み直してエラーにする
func debitStock(ctx context.Context, inventory repo.InventoryRepository, unit model.LineTarget, qty int64) error {
	ok, err := inventory.DecreaseStockIfEnough(ctx, unit, qty)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	available, err := inventory.StockOf(ctx, unit)
	if errors.Is(err, repo.ErrNotFound) {
		return &model.UnitUnavailableError{Unit: unit}
	}
	if err != nil {
		return err
	}
	return &model.InsufficientStockError{Unit: unit, Requested: qty, Available: available}
}

// usecaseが返してよいエラー（ドメインエラー / HTTPError）はそのまま、それ以外は500にする
func isDomainError(err error) bool {
	var stockErr *model.InsufficientStockError
	var unitErr *model.UnitUnavailableError
	var transErr *model.IllegalTransitionError
	var httpErr *HTTPError
	switch {
	case errors.As(err, &stockErr), errors.As(err, &unitErr), errors.As(err, &transErr), errors.As(err, &httpErr):
		return true
	case errors.Is(err, model.ErrEmptyCart), errors.Is(err, model.ErrInvalidAddress), errors.Is(err, model.ErrCorruptLineItem):
		return true
	}
	return false
}
