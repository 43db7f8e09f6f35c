package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// QueryService 商品读操作服务
type QueryService struct {
	repo domain.ProductRepository
}

// NewQueryService 创建商品读操作服务
func NewQueryService(repo domain.ProductRepository) *QueryService {
	return &QueryService{repo: repo}
}

// GetProduct 按 ID 查询商品
func (s *QueryService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts 分页列出商品
func (s *QueryService) ListProducts(ctx context.Context, category domain.Category, page, pageSize int) ([]*domain.Product, *utils.Pagination, error) {
	p := utils.NewPagination(page, pageSize, 0)
	products, total, err := s.repo.List(ctx, category, p.Offset(), p.Limit())
	if err != nil {
		return nil, nil, err
	}
	p.Total = total
	return products, p, nil
}
