package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/storefront/pkg/config"
)

// RateLimitMiddleware 基于 Redis 固定窗口的限流中间件，按客户端 IP 计数
func RateLimitMiddleware(client *redis.Client, cfg config.RateLimitConfig) gin.HandlerFunc {
	window := time.Second
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix())

		pipe := client.Pipeline()
		count := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			// 限流器故障时放行
			c.Next()
			return
		}

		remaining := int64(cfg.QPS) - count.Val()
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.QPS))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count.Val() > int64(cfg.QPS) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}

		c.Next()
	}
}
