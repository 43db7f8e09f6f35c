package application

import (
	"context"
	"time"

	"github.com/wyfcoding/storefront/internal/reservation/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// CartService 预约购物车服务
// 预约购物车按买家持久化，区别于即时订单的会话购物车
type CartService struct {
	carts    domain.CartRepository
	products ProductReader
}

// NewCartService 创建预约购物车服务
func NewCartService(carts domain.CartRepository, products ProductReader) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetCart 获取买家的预约购物车
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.carts.GetOrCreate(ctx, userID)
}

// AddLine 加入一行，(商品, 日期, 时段) 相同则合并件数
// 交付日期必须满足商品的备货提前期
func (s *CartService) AddLine(ctx context.Context, userID string, cmd *AddCartLineCommand) (*domain.Cart, error) {
	product, err := s.products.GetByID(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Reservable() {
		return nil, errs.Newf(errs.CodeValidationFailure, "product %q is not available for reservation", product.Name)
	}
	if cmd.Quantity < product.MinOrderQuantity {
		return nil, errs.Newf(errs.CodeValidationFailure, "product %q requires at least %d pieces", product.Name, product.MinOrderQuantity)
	}

	date, err := domain.ParseDate(cmd.ReservationDate)
	if err != nil {
		return nil, err
	}
	timeSlot, err := domain.ParseTimeSlot(cmd.ReservationTime)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateLeadTime(product.Name, product.PreparationDays, date, time.Now()); err != nil {
		return nil, err
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.UpsertItem(ctx, &domain.CartItem{
		CartID:          cart.ID,
		ProductID:       product.ID,
		ReservationDate: date,
		ReservationTime: timeSlot,
		Quantity:        cmd.Quantity,
	}); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "Reservation cart line added", "user_id", userID, "product_id", product.ID, "date", cmd.ReservationDate)
	return s.carts.GetOrCreate(ctx, userID)
}

// UpdateLine 修改行件数，0 表示移除
func (s *CartService) UpdateLine(ctx context.Context, userID string, itemID uint, quantity int) (*domain.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, errs.New(errs.CodeForbidden, "cart line belongs to another user")
	}

	if quantity <= 0 {
		if err := s.carts.DeleteItem(ctx, itemID); err != nil {
			return nil, err
		}
	} else {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if quantity < product.MinOrderQuantity {
			return nil, errs.Newf(errs.CodeValidationFailure, "product %q requires at least %d pieces", product.Name, product.MinOrderQuantity)
		}
		if err := s.carts.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
			return nil, err
		}
	}

	return s.carts.GetOrCreate(ctx, userID)
}

// RemoveLine 移除一行
func (s *CartService) RemoveLine(ctx context.Context, userID string, itemID uint) (*domain.Cart, error) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.carts.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.CartID != cart.ID {
		return nil, errs.New(errs.CodeForbidden, "cart line belongs to another user")
	}

	if err := s.carts.DeleteItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.carts.GetOrCreate(ctx, userID)
}
