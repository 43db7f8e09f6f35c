// Package persistence 预约的 GORM 持久化实现
package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/storefront/internal/reservation/domain"
	"github.com/wyfcoding/storefront/pkg/db"
	"github.com/wyfcoding/storefront/pkg/errs"
)

// ReservationRepository 预约仓储的 GORM 实现
type ReservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository 创建预约仓储
func NewReservationRepository(database *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: database}
}

func (r *ReservationRepository) conn(ctx context.Context) *gorm.DB {
	return db.TxFromContext(ctx, r.db).WithContext(ctx)
}

// Create 创建预约及其预约行
func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return r.conn(ctx).Create(reservation).Error
}

// GetByID 按 ID 获取预约（含预约行）
func (r *ReservationRepository) GetByID(ctx context.Context, id uint) (*domain.Reservation, error) {
	var reservation domain.Reservation
	if err := r.conn(ctx).Preload("Items").First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.CodeNotFound, "reservation %d not found", id)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

// ListForUser 按买家分页列出预约
func (r *ReservationRepository) ListForUser(ctx context.Context, userID string, offset, limit int) ([]*domain.Reservation, int64, error) {
	return r.list(ctx, r.conn(ctx).Model(&domain.Reservation{}).Where("user_id = ?", userID), offset, limit)
}

// List 分页列出全部预约，可按状态过滤
func (r *ReservationRepository) List(ctx context.Context, status domain.Status, offset, limit int) ([]*domain.Reservation, int64, error) {
	query := r.conn(ctx).Model(&domain.Reservation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return r.list(ctx, query, offset, limit)
}

func (r *ReservationRepository) list(ctx context.Context, query *gorm.DB, offset, limit int) ([]*domain.Reservation, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var reservations []*domain.Reservation
	if err := query.Preload("Items").Order("created_at DESC").Offset(offset).Limit(limit).Find(&reservations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, total, nil
}

// UpdateStatus CAS 状态变更
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uint, from, to domain.Status) error {
	result := r.conn(ctx).Model(&domain.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("failed to update reservation status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.Newf(errs.CodeConcurrentModification, "reservation %d is no longer in status %s", id, from)
	}
	return nil
}

// SetPayment 记录定金支付信息
func (r *ReservationRepository) SetPayment(ctx context.Context, id uint, gcashReference, paymentProofRef string) error {
	return r.conn(ctx).Model(&domain.Reservation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"gcash_reference":   gcashReference,
			"payment_proof_ref": paymentProofRef,
		}).Error
}

// SetDecisionNote 记录店家审核备注
func (r *ReservationRepository) SetDecisionNote(ctx context.Context, id uint, note string) error {
	return r.conn(ctx).Model(&domain.Reservation{}).
		Where("id = ?", id).
		Update("decision_note", note).Error
}

// CartRepository 预约购物车仓储的 GORM 实现
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建预约购物车仓储
func NewCartRepository(database *gorm.DB) *CartRepository {
	return &CartRepository{db: database}
}

func (r *CartRepository) conn(ctx context.Context) *gorm.DB {
	return db.TxFromContext(ctx, r.db).WithContext(ctx)
}

// GetOrCreate 获取买家的购物车，不存在时创建
func (r *CartRepository) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.conn(ctx).Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = domain.Cart{UserID: userID}
		if err := r.conn(ctx).Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create reservation cart: %w", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation cart: %w", err)
	}
	return &cart, nil
}

// UpsertItem 新增或合并一行，(购物车, 商品, 日期, 时段) 冲突时累加件数
func (r *CartRepository) UpsertItem(ctx context.Context, item *domain.CartItem) error {
	return r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "cart_id"}, {Name: "product_id"},
			{Name: "reservation_date"}, {Name: "reservation_time"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("quantity + VALUES(quantity)"),
		}),
	}).Create(item).Error
}

// UpdateItemQuantity 修改行件数
func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error {
	return r.conn(ctx).Model(&domain.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// GetItem 按 ID 获取行
func (r *CartRepository) GetItem(ctx context.Context, itemID uint) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := r.conn(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.Newf(errs.CodeNotFound, "cart line %d not found", itemID)
		}
		return nil, fmt.Errorf("failed to get cart line: %w", err)
	}
	return &item, nil
}

// DeleteItem 删除行
func (r *CartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	return r.conn(ctx).Delete(&domain.CartItem{}, itemID).Error
}

// Clear 清空购物车
func (r *CartRepository) Clear(ctx context.Context, cartID uint) error {
	return r.conn(ctx).Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error
}
