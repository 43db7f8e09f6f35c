// Package persistence 通知的 GORM 持久化实现
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/errs"
)

// NotificationRepository 通知仓储的 GORM 实现
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: database}
}

func (r *NotificationRepository) conn(ctx context.Context) *gorm.DB {
	return db.TxFromContext(ctx, r.db).WithContext(ctx)
}

// Append 追加一条通知
func (r *NotificationRepository) Append(ctx context.Context, notification *domain.Notification) error {
	return r.conn(ctx).Create(notification).Error
}

// ListForUser 按用户分页列出通知
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Notification, int64, error) {
	return r.list(ctx, r.conn(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID), offset, limit)
}

// ListForAdmin 分页列出管理员通知
func (r *NotificationRepository) ListForAdmin(ctx context.Context, offset, limit int) ([]*domain.Notification, int64, error) {
	return r.list(ctx, r.conn(ctx).Model(&domain.Notification{}).Where("user_id IS NULL"), offset, limit)
}

func (r *NotificationRepository) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]*domain.Notification, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []*domain.Notification
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// GetByID 按 ID 获取通知
func (r *NotificationRepository) GetByID(ctx context.Context, id uint) (*domain.Notification, error) {
	var notification domain.Notification
	if err := r.conn(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.CodeNotFound, "notification %d not found", id)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &notification, nil
}

// MarkRead 标记单条已读
func (r *NotificationRepository) MarkRead(ctx context.Context, id uint) error {
	return r.conn(ctx).Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// MarkAllReadForUser 标记用户全部已读
func (r *NotificationRepository) MarkAllReadForUser(ctx context.Context, userID string) error {
	return r.conn(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// MarkAllReadForAdmin 标记管理员通知全部已读
func (r *NotificationRepository) MarkAllReadForAdmin(ctx context.Context) error {
	return r.conn(ctx).Model(&domain.Notification{}).
		Where("user_id IS NULL AND is_read = ?", false).
		Update("is_read", true).Error
}

// CountUnreadForUser 统计用户未读数
func (r *NotificationRepository) CountUnreadForUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CountUnreadForAdmin 统计管理员未读数
func (r *NotificationRepository) CountUnreadForAdmin(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn(ctx).Model(&domain.Notification{}).
		Where("user_id IS NULL AND is_read = ?", false).
		Count(&count).Error
	return count, err
}

// PurgeRead 物理删除早于给定时间的已读通知
func (r *NotificationRepository) PurgeRead(ctx context.Context, before time.Time) (int64, error) {
	result := r.conn(ctx).Unscoped().
		Where("is_read = ? AND created_at < ?", true, before).
		Delete(&domain.Notification{})
	return result.RowsAffected, result.Error
}
