// Package persistence 商品目录的 GORM 持久化实现
package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/errs"
)

// ProductRepository 商品仓储的 GORM 实现
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(database *gorm.DB) *ProductRepository {
	return &ProductRepository{db: database}
}

func (r *ProductRepository) conn(ctx context.Context) *gorm.DB {
	return db.TxFromContext(ctx, r.db).WithContext(ctx)
}

// Save 保存商品
func (r *ProductRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.conn(ctx).Save(product).Error
}

// GetByID 按 ID 获取商品
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.conn(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.CodeNotFound, "product %d not found", id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// List 按分类分页列出商品
func (r *ProductRepository) List(ctx context.Context, category domain.Category, offset, limit int) ([]*domain.Product, int64, error) {
	query := r.conn(ctx).Model(&domain.Product{})
	if category != "" {
		// 分类以逗号分隔存储，用 FIND_IN_SET 匹配
		query = query.Where("FIND_IN_SET(?, categories) > 0", string(category))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []*domain.Product
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// Delete 删除商品
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	return r.conn(ctx).Delete(&domain.Product{}, id).Error
}

// DecrementStock 条件扣减库存，库存不足时不修改任何行
func (r *ProductRepository) DecrementStock(ctx context.Context, productID uint, quantity int) error {
	result := r.conn(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.Newf(errs.CodeInsufficientStock, "insufficient stock for product %d", productID)
	}
	return nil
}

// RestoreStock 归还库存
func (r *ProductRepository) RestoreStock(ctx context.Context, productID uint, quantity int) error {
	result := r.conn(ctx).Model(&domain.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock: %w", result.Error)
	}
	return nil
}
