package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/reservation/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// QueryService 预约读操作服务
type QueryService struct {
	repo domain.Repository
}

// NewQueryService 创建预约读操作服务
func NewQueryService(repo domain.Repository) *QueryService {
	return &QueryService{repo: repo}
}

// GetReservation 按 ID 查询预约，买家只能看自己的
func (s *QueryService) GetReservation(ctx context.Context, id uint, userID string, staff bool) (*domain.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && reservation.UserID != userID {
		return nil, errs.New(errs.CodeForbidden, "reservation belongs to another user")
	}
	return reservation, nil
}

// ListMyReservations 买家分页列出自己的预约
func (s *QueryService) ListMyReservations(ctx context.Context, userID string, page, pageSize int) ([]*domain.Reservation, *utils.Pagination, error) {
	p := utils.NewPagination(page, pageSize, 0)
	reservations, total, err := s.repo.ListForUser(ctx, userID, p.Offset(), p.Limit())
	if err != nil {
		return nil, nil, err
	}
	p.Total = total
	return reservations, p, nil
}

// ListReservations 店家分页列出预约，可按状态过滤
func (s *QueryService) ListReservations(ctx context.Context, status domain.Status, page, pageSize int) ([]*domain.Reservation, *utils.Pagination, error) {
	if status != "" && !status.Valid() {
		return nil, nil, errs.Newf(errs.CodeValidationFailure, "unknown status: %s", status)
	}
	p := utils.NewPagination(page, pageSize, 0)
	reservations, total, err := s.repo.List(ctx, status, p.Offset(), p.Limit())
	if err != nil {
		return nil, nil, err
	}
	p.Total = total
	return reservations, p, nil
}
