package model

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart      = errors.New("cart is empty")
	ErrInvalidAddress = errors.New("invalid address")
	//target が商品でもバリエーションでもない明細
	ErrCorruptLineItem = errors.New("corrupt cart line item")
)

type InsufficientStockError struct {
	Unit      LineTarget
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s %d: requested %d, available %d",
		e.Unit.Kind, e.Unit.ID, e.Requested, e.Available)
}

type IllegalTransitionError struct {
	From OrderStatus
	To   OrderStatus
	Role Role
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s for role %s", e.From, e.To, e.Role)
}

// 非公開・削除済みの商品/バリエーション
type UnitUnavailableError struct {
	Unit LineTarget
}

func (e *UnitUnavailableError) Error() string {
	return fmt.Sprintf("%s %d is unavailable", e.Unit.Kind, e.Unit.ID)
}
