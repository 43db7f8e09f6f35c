package application

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// CommandService 通知写操作服务
type CommandService struct {
	repo domain.Repository
}

// NewCommandService 创建通知写操作服务
func NewCommandService(repo domain.Repository) *CommandService {
	return &CommandService{repo: repo}
}

// MarkRead 标记单条通知已读
// 买家只能标记自己的通知，员工只能标记管理员通知
func (s *CommandService) MarkRead(ctx context.Context, id uint, userID string, staff bool) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.ForAdmin() {
		if !staff {
			return errs.New(errs.CodeForbidden, "notification belongs to staff")
		}
	} else if *notification.UserID != userID {
		return errs.New(errs.CodeForbidden, "notification belongs to another user")
	}

	return s.repo.MarkRead(ctx, id)
}

// MarkAllRead 标记当前身份的全部通知已读
func (s *CommandService) MarkAllRead(ctx context.Context, userID string, staff bool) error {
	if staff {
		return s.repo.MarkAllReadForAdmin(ctx)
	}
	return s.repo.MarkAllReadForUser(ctx, userID)
}

// PurgeRead 清除早于保留期的已读通知
func (s *CommandService) PurgeRead(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays < 1 {
		return 0, errs.New(errs.CodeValidationFailure, "retention days must be at least 1")
	}

	before := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.PurgeRead(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}

	logger.Info(ctx, "Purged read notifications", "deleted", deleted, "before", before)
	return deleted, nil
}
