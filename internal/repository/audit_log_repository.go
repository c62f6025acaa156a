package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

// 管理者・配達担当・システムの操作ログ
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	// 1つの対象（注文・商品など）の履歴を古い順に。limit<=0 は既定値
	ListByResource(ctx context.Context, resource model.AuditResourceType, resourceID int64, limit int) ([]model.AuditLog, error)
}
