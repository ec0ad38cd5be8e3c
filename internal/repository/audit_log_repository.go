package repository

import (
	"context"

	"storefront/internal/domain/model"
)

// 監査ログの絞り込み。ゼロ値の項目は条件に入れない
type AuditLogFilter struct {
	ActorUserID  int64
	Action       model.AuditAction
	ResourceType model.AuditResourceType
	ResourceID   int64
	Limit        int
}

type AuditLogRepository interface {
	// 管理操作と同じtxで書く
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
