// Package persistence 订单的 GORM 持久化实现
package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/errs"
)

// OrderRepository 订单仓储的 GORM 实现
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(database *gorm.DB) *OrderRepository {
	return &OrderRepository{db: database}
}

func (r *OrderRepository) conn(ctx context.Context) *gorm.DB {
	return db.TxFromContext(ctx, r.db).WithContext(ctx)
}

// Create 创建订单及其订单行
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.conn(ctx).Create(order).Error
}

// GetByID 按 ID 获取订单（含订单行）
func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	if err := r.conn(ctx).Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.CodeNotFound, "order %d not found", id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListForUser 按买家分页列出订单
func (r *OrderRepository) ListForUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Order, int64, error) {
	return r.list(ctx, r.conn(ctx).Model(&domain.Order{}).Where("user_id = ?", userID), offset, limit)
}

// List 分页列出全部订单，可按状态过滤
func (r *OrderRepository) List(ctx context.Context, status domain.Status, offset, limit int) ([]*domain.Order, int64, error) {
	query := r.conn(ctx).Model(&domain.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(ctx, query, offset, limit)
}

func (r *OrderRepository) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]*domain.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []*domain.Order
	if err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus CAS 状态变更，状态已被并发修改时不更新任何行
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.Status) error {
	result := r.conn(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.Newf(errs.CodeConcurrentModification, "order %d is no longer in status %s", id, from)
	}
	return nil
}

// SetPayment 记录支付信息
func (r *OrderRepository) SetPayment(ctx context.Context, id uint, gcashReference, paymentProofRef string) error {
	return r.conn(ctx).Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"gcash_reference":   gcashReference,
			"payment_proof_ref": paymentProofRef,
		}).Error
}
