package domain

import "context"

// Repository 购物车仓储接口，实现基于 Redis，带会话 TTL
type Repository interface {
	// 获取会话购物车，不存在时返回空购物车
	Get(ctx context.Context, sessionID string) (*Cart, error)
	// 保存购物车并刷新 TTL
	Save(ctx context.Context, cart *Cart) error
	// 清空会话购物车
	Clear(ctx context.Context, sessionID string) error
}
