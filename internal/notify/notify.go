package notify

import (
	"context"
	"fmt"
	"time"

	"ecshop/internal/domain/model"

	"go.uber.org/zap"
)

// 注文の状態変化・配達割り当てを知らせるイベント
type Event struct {
	Kind       model.NotificationKind `json:"kind"`
	UserID     int64                  `json:"user_id"`
	OrderID    int64                  `json:"order_id"`
	Status     model.OrderStatus      `json:"status,omitempty"`
	Message    string                 `json:"message"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) error
}

// 注文者へのステータス変更通知
func StatusChanged(o model.Order) Event {
	return Event{
		Kind:       model.NotificationStatusChanged,
		UserID:     o.UserID,
		OrderID:    o.ID,
		Status:     o.Status,
		Message:    fmt.Sprintf("Your order #%d is now %s.", o.ID, o.Status),
		OccurredAt: time.Now().UTC(),
	}
}

// 配達担当への割り当て通知
func DeliveryAssigned(o model.Order, deliveryUserID int64) Event {
	return Event{
		Kind:       model.NotificationDeliveryAssigned,
		UserID:     deliveryUserID,
		OrderID:    o.ID,
		Status:     o.Status,
		Message:    fmt.Sprintf("Order #%d has been assigned to you for delivery.", o.ID),
		OccurredAt: time.Now().UTC(),
	}
}

// 複数の送信先に配る。失敗はログに残すだけで呼び出し元には返さない
type Multi struct {
	targets []Dispatcher
	log     *zap.Logger
}

func NewMulti(log *zap.Logger, targets ...Dispatcher) *Multi {
	if log == nil {
		log = zap.NewNop()
	}
	return &Multi{targets: targets, log: log}
}

func (m *Multi) Dispatch(ctx context.Context, ev Event) error {
	for _, t := range m.targets {
		if err := t.Dispatch(ctx, ev); err != nil {
			m.log.Warn("notification dispatch failed",
				zap.String("kind", string(ev.Kind)),
				zap.Int64("order_id", ev.OrderID),
				zap.Int64("user_id", ev.UserID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// 何もしない
type Nop struct{}

func (Nop) Dispatch(context.Context, Event) error { return nil }
