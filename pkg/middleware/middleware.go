// Package middleware 提供 Gin 通用中间件（日志、trace、panic recover、CORS、身份提取）
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// RequestIDKey gin context key for request ID
const RequestIDKey = "request_id"

// UserIDKey gin context key for the authenticated customer ID
const UserIDKey = "user_id"

// StaffKey gin context key for the staff flag
const StaffKey = "is_staff"

// GinLoggingMiddleware Gin 日志中间件
func GinLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		spanID := uuid.New().String()

		c.Set(RequestIDKey, requestID)

		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		clientIP := c.ClientIP()

		ctx := logger.ContextWithTrace(c.Request.Context(), traceID, spanID)
		c.Request = c.Request.WithContext(ctx)

		logger.Info(ctx, "HTTP request started",
			"request_id", requestID,
			"method", method,
			"path", path,
			"client_ip", clientIP,
		)

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		logger.Info(ctx, "HTTP request completed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status_code", statusCode,
			"duration", duration,
		)
	}
}

// GinRecoveryMiddleware Gin panic 恢复中间件
func GinRecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				requestID, _ := c.Get(RequestIDKey)

				logger.Error(c.Request.Context(), "HTTP request panicked",
					"request_id", requestID,
					"panic", err,
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": requestID,
				})
			}
		}()
		c.Next()
	}
}

// GinCORSMiddleware Gin CORS 中间件
func GinCORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Trace-ID, X-User-ID, X-Staff, X-Session-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// IdentityMiddleware 从网关注入的头部提取身份信息
// 认证本身由前置层完成，这里只消费结果
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set(UserIDKey, userID)
		}
		if c.GetHeader("X-Staff") == "true" {
			c.Set(StaffKey, true)
		}
		c.Next()
	}
}

// RequireUser 要求请求携带用户身份
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireStaff 要求请求携带员工身份
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsStaff(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

// UserID 返回当前请求的用户 ID，未认证时为空
func UserID(c *gin.Context) string {
	if v, ok := c.Get(UserIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IsStaff 返回当前请求是否为员工身份
func IsStaff(c *gin.Context) bool {
	if v, ok := c.Get(StaffKey); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}
