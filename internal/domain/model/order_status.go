package model

var nextStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending: OrderStatusPaid,
	OrderStatusPaid:    OrderStatusShipped,
	OrderStatusShipped: OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// delivered / cancelled からは動かせない
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// 在庫を減らした状態か（キャンセル時の在庫戻し対象）
func (s OrderStatus) HoldsStock() bool {
	return s == OrderStatusPending || s == OrderStatusPaid || s == OrderStatusShipped
}

// ロールごとの遷移チェック。assigned は配達担当がこの注文の担当かどうか
func CheckTransition(from, to OrderStatus, role Role, assigned bool) error {
	illegal := &IllegalTransitionError{From: from, To: to, Role: role}
	if !to.Valid() || from.Terminal() {
		return illegal
	}

	switch role {
	case RoleAdmin:
		if to == OrderStatusCancelled {
			return nil
		}
		if nextStatus[from] == to {
			return nil
		}
	case RoleDelivery:
		if assigned && from == OrderStatusShipped && to == OrderStatusDelivered {
			return nil
		}
	}
	return illegal
}
