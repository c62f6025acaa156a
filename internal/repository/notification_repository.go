package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, n model.Notification) error
	ListByUserID(ctx context.Context, userID int64, limit int) ([]model.Notification, error)

	//本人の通知でなければErrNotFound
	MarkRead(ctx context.Context, userID, notificationID int64) (model.Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}
