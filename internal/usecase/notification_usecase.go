package usecase

import (
	"context"
	"errors"
	"net/http"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
)

type NotificationUsecase struct {
	notifications repo.NotificationRepository
}

func NewNotificationUsecase(notifications repo.NotificationRepository) *NotificationUsecase {
	return &NotificationUsecase{notifications: notifications}
}

// 自分宛ての通知（新しい順）
func (u *NotificationUsecase) ListMine(ctx context.Context, actor model.Actor, limit int) ([]model.Notification, error) {
	if !actor.Authenticated() {
		return []model.Notification{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	list, err := u.notifications.ListByUserID(ctx, actor.UserID, limit)
	if err != nil {
		return []model.Notification{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

// 他人の通知はnot found（存在を漏らさない）
func (u *NotificationUsecase) MarkRead(ctx context.Context, actor model.Actor, notificationID int64) (model.Notification, error) {
	if !actor.Authenticated() {
		return model.Notification{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if notificationID <= 0 {
		return model.Notification{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := u.notifications.MarkRead(ctx, actor.UserID, notificationID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Notification{}, NewHTTPError(http.StatusNotFound, "notification not found")
	}
	if err != nil {
		return model.Notification{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}

func (u *NotificationUsecase) MarkAllRead(ctx context.Context, actor model.Actor) (int64, error) {
	if !actor.Authenticated() {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	n, err := u.notifications.MarkAllRead(ctx, actor.UserID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}

func (u *NotificationUsecase) UnreadCount(ctx context.Context, actor model.Actor) (int64, error) {
	if !actor.Authenticated() {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	n, err := u.notifications.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}

func (u *NotificationUsecase) DeleteAll(ctx context.Context, actor model.Actor) (int64, error) {
	if !actor.Authenticated() {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	n, err := u.notifications.DeleteAll(ctx, actor.UserID)
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}
