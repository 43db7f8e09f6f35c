package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// QueryService 通知读操作服务
type QueryService struct {
	repo domain.Repository
}

// NewQueryService 创建通知读操作服务
func NewQueryService(repo domain.Repository) *QueryService {
	return &QueryService{repo: repo}
}

// List 按当前身份分页列出通知
func (s *QueryService) List(ctx context.Context, userID string, staff bool, page, pageSize int) ([]*domain.Notification, *utils.Pagination, error) {
	p := utils.NewPagination(page, pageSize, 0)

	var (
		notifications []*domain.Notification
		total         int64
		err           error
	)
	if staff {
		notifications, total, err = s.repo.ListForAdmin(ctx, p.Offset(), p.Limit())
	} else {
		notifications, total, err = s.repo.ListForUser(ctx, userID, p.Offset(), p.Limit())
	}
	if err != nil {
		return nil, nil, err
	}

	p.Total = total
	return notifications, p, nil
}

// CountUnread 统计当前身份的未读数
func (s *QueryService) CountUnread(ctx context.Context, userID string, staff bool) (int64, error) {
	if staff {
		return s.repo.CountUnreadForAdmin(ctx)
	}
	return s.repo.CountUnreadForUser(ctx, userID)
}
