package domain

import "context"

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 保存商品（新建或更新）
	Save(ctx context.Context, product *Product) error
	// 按 ID 获取商品
	GetByID(ctx context.Context, id uint) (*Product, error)
	// 按分类分页列出商品，category 为空时列出全部
	List(ctx context.Context, category Category, offset, limit int) ([]*Product, int64, error)
	// 删除商品
	Delete(ctx context.Context, id uint) error
	// 条件扣减库存：仅当剩余库存足够时扣减，否则返回 INSUFFICIENT_STOCK
	DecrementStock(ctx context.Context, productID uint, quantity int) error
	// 归还库存
	RestoreStock(ctx context.Context, productID uint, quantity int) error
}

// EventPublisher 商品事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
