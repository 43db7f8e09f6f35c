// Package http 通知的 HTTP 接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/storefront/internal/notification/application"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/response"
)

// Handler 通知 HTTP 处理器
type Handler struct {
	service *application.Service
}

// NewHandler 创建通知 HTTP 处理器
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	notifications.Use(middleware.RequireUser())
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.CountUnread)
		notifications.POST("/:id/read", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
	}
}

// List 分页列出当前身份的通知
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	notifications, pagination, err := h.service.List(c.Request.Context(), middleware.UserID(c), middleware.IsStaff(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"notifications": notifications,
		"pagination":    pagination,
	})
}

// CountUnread 未读数
func (h *Handler) CountUnread(c *gin.Context) {
	count, err := h.service.CountUnread(c.Request.Context(), middleware.UserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"unread": count})
}

// MarkRead 标记单条已读
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, errs.Newf(errs.CodeValidationFailure, "invalid id: %s", c.Param("id")))
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), uint(id), middleware.UserID(c), middleware.IsStaff(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"read": id})
}

// MarkAllRead 标记全部已读
func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllRead(c.Request.Context(), middleware.UserID(c), middleware.IsStaff(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"read": "all"})
}
