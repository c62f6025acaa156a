package notify

import (
	"context"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
)

// notificationsテーブルに保存する（アプリ内通知）
type StoreDispatcher struct {
	notifications repo.NotificationRepository
}

func NewStoreDispatcher(notifications repo.NotificationRepository) *StoreDispatcher {
	return &StoreDispatcher{notifications: notifications}
}

func (d *StoreDispatcher) Dispatch(ctx context.Context, ev Event) error {
	return d.notifications.Create(ctx, model.Notification{
		UserID:    ev.UserID,
		OrderID:   ev.OrderID,
		Kind:      ev.Kind,
		Message:   ev.Message,
		CreatedAt: ev.OccurredAt,
	})
}
