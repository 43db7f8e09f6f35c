// Package http 购物车的 HTTP 接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/storefront/internal/cart/application"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/response"
)

// Handler 购物车 HTTP 处理器
type Handler struct {
	service *application.Service
}

// NewHandler 创建购物车 HTTP 处理器
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
// 购物车按会话隔离，不要求登录
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	cart := router.Group("/cart")
	{
		cart.GET("", h.Get)
		cart.POST("/lines", h.AddLine)
		cart.PUT("/lines/:productId", h.UpdateLine)
		cart.DELETE("/lines/:productId", h.RemoveLine)
		cart.DELETE("", h.Clear)
	}
}

type addLineRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type updateLineRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// Get 获取当前会话的购物车
func (h *Handler) Get(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	cart, err := h.service.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cart)
}

// AddLine 加入商品
func (h *Handler) AddLine(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	cart, err := h.service.AddLine(c.Request.Context(), sessionID, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cart)
}

// UpdateLine 修改件数
func (h *Handler) UpdateLine(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		response.Error(c, errs.Newf(errs.CodeValidationFailure, "invalid product id: %s", c.Param("productId")))
		return
	}

	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	cart, err := h.service.UpdateLine(c.Request.Context(), sessionID, uint(productID), req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cart)
}

// RemoveLine 移除商品
func (h *Handler) RemoveLine(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		response.Error(c, errs.Newf(errs.CodeValidationFailure, "invalid product id: %s", c.Param("productId")))
		return
	}

	cart, err := h.service.RemoveLine(c.Request.Context(), sessionID, uint(productID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, cart)
}

// Clear 清空购物车
func (h *Handler) Clear(c *gin.Context) {
	sessionID, ok := sessionID(c)
	if !ok {
		return
	}

	if err := h.service.Clear(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"cleared": sessionID})
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-Session-ID")
	if id == "" {
		response.Error(c, errs.New(errs.CodeValidationFailure, "X-Session-ID header is required"))
		return "", false
	}
	return id, true
}
