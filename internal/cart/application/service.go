// Package application 会话购物车的应用服务
package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// ProductReader 商品查询端口，由 catalog 仓储实现
type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error)
}

// Service 购物车应用服务
type Service struct {
	repo     domain.Repository
	products ProductReader
}

// NewService 创建购物车应用服务
func NewService(repo domain.Repository, products ProductReader) *Service {
	return &Service{repo: repo, products: products}
}

// Get 获取会话购物车
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, sessionID)
}

// AddLine 加入商品
func (s *Service) AddLine(ctx context.Context, sessionID string, productID uint, quantity int) (*domain.Cart, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Orderable() {
		return nil, errs.Newf(errs.CodeValidationFailure, "product %q is not available for ordering", product.Name)
	}
	if quantity < product.MinOrderQuantity {
		return nil, errs.Newf(errs.CodeValidationFailure, "product %q requires at least %d pieces", product.Name, product.MinOrderQuantity)
	}

	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := cart.Add(product.ID, product.Name, product.Price, quantity, product.Stock); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "Cart line added", "session_id", sessionID, "product_id", productID, "quantity", quantity)
	return cart, nil
}

// UpdateLine 修改件数，0 表示移除
func (s *Service) UpdateLine(ctx context.Context, sessionID string, productID uint, quantity int) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if quantity > 0 {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if quantity < product.MinOrderQuantity {
			return nil, errs.Newf(errs.CodeValidationFailure, "product %q requires at least %d pieces", product.Name, product.MinOrderQuantity)
		}
		if err := cart.SetQuantity(productID, quantity, product.Stock); err != nil {
			return nil, err
		}
	} else {
		if err := cart.SetQuantity(productID, 0, 0); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveLine 移除商品
func (s *Service) RemoveLine(ctx context.Context, sessionID string, productID uint) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	cart.Remove(productID)
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear 清空购物车
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.repo.Clear(ctx, sessionID)
}
