package domain

import "context"

// Repository 预约仓储接口
type Repository interface {
	// 创建预约及其预约行
	Create(ctx context.Context, reservation *Reservation) error
	// 按 ID 获取预约（含预约行）
	GetByID(ctx context.Context, id uint) (*Reservation, error)
	// 按买家分页列出预约
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]*Reservation, int64, error)
	// 分页列出全部预约，status 为空时不过滤
	List(ctx context.Context, status Status, offset, limit int) ([]*Reservation, int64, error)
	// CAS 状态变更：仅当当前状态为 from 时更新为 to，否则返回 CONCURRENT_MODIFICATION
	UpdateStatus(ctx context.Context, id uint, from, to Status) error
	// 记录定金支付信息
	SetPayment(ctx context.Context, id uint, gcashReference, paymentProofRef string) error
	// 记录店家审核备注
	SetDecisionNote(ctx context.Context, id uint, note string) error
}

// CartRepository 预约购物车仓储接口
type CartRepository interface {
	// 获取买家的购物车，不存在时创建
	GetOrCreate(ctx context.Context, userID string) (*Cart, error)
	// 新增或合并一行：(商品, 日期, 时段) 已存在时累加件数
	UpsertItem(ctx context.Context, item *CartItem) error
	// 修改行件数
	UpdateItemQuantity(ctx context.Context, itemID uint, quantity int) error
	// 按 ID 获取行
	GetItem(ctx context.Context, itemID uint) (*CartItem, error)
	// 删除行
	DeleteItem(ctx context.Context, itemID uint) error
	// 清空购物车
	Clear(ctx context.Context, cartID uint) error
}

// EventPublisher 预约事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
