package domain

import "context"

// Repository 订单仓储接口
type Repository interface {
	// 创建订单及其订单行
	Create(ctx context.Context, order *Order) error
	// 按 ID 获取订单（含订单行）
	GetByID(ctx context.Context, id uint) (*Order, error)
	// 按买家分页列出订单
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]*Order, int64, error)
	// 分页列出全部订单，status 为空时不过滤
	List(ctx context.Context, status Status, offset, limit int) ([]*Order, int64, error)
	// CAS 状态变更：仅当当前状态为 from 时更新为 to，否则返回 CONCURRENT_MODIFICATION
	UpdateStatus(ctx context.Context, id uint, from, to Status) error
	// 记录支付信息
	SetPayment(ctx context.Context, id uint, gcashReference, paymentProofRef string) error
}

// EventPublisher 订单事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
