package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// QueryService 订单读操作服务
type QueryService struct {
	repo domain.Repository
}

// NewQueryService 创建订单读操作服务
func NewQueryService(repo domain.Repository) *QueryService {
	return &QueryService{repo: repo}
}

// GetOrder 按 ID 查询订单，买家只能看自己的
func (s *QueryService) GetOrder(ctx context.Context, id uint, userID string, staff bool) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && order.UserID != userID {
		return nil, errs.New(errs.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

// ListMyOrders 买家分页列出自己的订单
func (s *QueryService) ListMyOrders(ctx context.Context, userID string, page, pageSize int) ([]*domain.Order, *utils.Pagination, error) {
	p := utils.NewPagination(page, pageSize, 0)
	orders, total, err := s.repo.ListForUser(ctx, userID, p.Offset(), p.Limit())
	if err != nil {
		return nil, nil, err
	}
	p.Total = total
	return orders, p, nil
}

// ListOrders 店家分页列出订单，可按状态过滤
func (s *QueryService) ListOrders(ctx context.Context, status domain.Status, page, pageSize int) ([]*domain.Order, *utils.Pagination, error) {
	if status != "" && !status.Valid() {
		return nil, nil, errs.Newf(errs.CodeValidationFailure, "unknown status: %s", status)
	}
	p := utils.NewPagination(page, pageSize, 0)
	orders, total, err := s.repo.List(ctx, status, p.Offset(), p.Limit())
	if err != nil {
		return nil, nil, err
	}
	p.Total = total
	return orders, p, nil
}
