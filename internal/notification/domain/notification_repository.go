package domain

import (
	"context"
	"time"
)

// Repository 通知仓储接口
// Append 参与调用方事务，保证通知与状态变更同事务提交
type Repository interface {
	// 追加一条通知
	Append(ctx context.Context, notification *Notification) error
	// 按用户分页列出通知
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]*Notification, int64, error)
	// 分页列出管理员通知
	ListForAdmin(ctx context.Context, offset, limit int) ([]*Notification, int64, error)
	// 按 ID 获取通知
	GetByID(ctx context.Context, id uint) (*Notification, error)
	// 标记单条已读
	MarkRead(ctx context.Context, id uint) error
	// 标记用户全部已读
	MarkAllReadForUser(ctx context.Context, userID string) error
	// 标记管理员通知全部已读
	MarkAllReadForAdmin(ctx context.Context) error
	// 统计用户未读数
	CountUnreadForUser(ctx context.Context, userID string) (int64, error)
	// 统计管理员未读数
	CountUnreadForAdmin(ctx context.Context) (int64, error)
	// 清除早于给定时间的已读通知，返回删除行数
	PurgeRead(ctx context.Context, before time.Time) (int64, error)
}
