// Package persistence 购物车的 Redis 持久化实现
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/pkg/cache"
)

// CartRepository 购物车仓储的 Redis 实现
type CartRepository struct {
	cache *cache.RedisCache
	ttl   time.Duration
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(c *cache.RedisCache, ttl time.Duration) *CartRepository {
	return &CartRepository{cache: c, ttl: ttl}
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// Get 获取会话购物车，不存在时返回空购物车
func (r *CartRepository) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.cache.GetJSON(ctx, cartKey(sessionID), &cart)
	if errors.Is(err, redis.Nil) {
		return domain.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = make(map[uint]*domain.Line)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

// Save 保存购物车并刷新 TTL
func (r *CartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	if err := r.cache.SetJSON(ctx, cartKey(cart.SessionID), cart, r.ttl); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Clear 清空会话购物车
func (r *CartRepository) Clear(ctx context.Context, sessionID string) error {
	return r.cache.Delete(ctx, cartKey(sessionID))
}
