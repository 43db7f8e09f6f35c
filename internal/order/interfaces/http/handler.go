// Package http 订单的 HTTP 接口
package http

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	cartdomain "github.com/wyfcoding/storefront/internal/cart/domain"
	"github.com/wyfcoding/storefront/internal/order/application"
	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/response"
)

// CartGateway 会话购物车端口，结账时读取并清空
type CartGateway interface {
	Get(ctx context.Context, sessionID string) (*cartdomain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// Handler 订单 HTTP 处理器
type Handler struct {
	service *application.Service
	carts   CartGateway
}

// NewHandler 创建订单 HTTP 处理器
func NewHandler(service *application.Service, carts CartGateway) *Handler {
	return &Handler{service: service, carts: carts}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/orders")
	orders.Use(middleware.RequireUser())
	{
		orders.POST("/checkout", h.Checkout)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/payment", h.SubmitPayment)
		orders.POST("/:id/complete", h.Complete)
		orders.POST("/:id/cancel", h.Cancel)
	}

	admin := router.Group("/admin/orders")
	admin.Use(middleware.RequireStaff())
	{
		admin.GET("", h.ListOrders)
		admin.GET("/:id", h.GetOrder)
		admin.POST("/:id/confirm", h.ConfirmPayment)
		admin.POST("/:id/reject", h.Reject)
		admin.POST("/:id/complete", h.Complete)
		admin.POST("/:id/cancel", h.Cancel)
		admin.PUT("/:id/status", h.UpdateStatus)
	}
}

type checkoutRequest struct {
	Lines             []application.CheckoutLine `json:"lines"`
	FulfillmentMethod string                     `json:"fulfillment_method" binding:"required"`
	DeliveryAddress   string                     `json:"delivery_address"`
	ContactNumber     string                     `json:"contact_number" binding:"required"`
	GCashReference    string                     `json:"gcash_reference"`
	PaymentProofRef   string                     `json:"payment_proof_ref"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Checkout 结账
// 请求未携带订单行时从会话购物车取，下单成功后清空购物车
func (h *Handler) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	ctx := c.Request.Context()
	sessionID := c.GetHeader("X-Session-ID")
	fromCart := false

	lines := req.Lines
	if len(lines) == 0 {
		if sessionID == "" {
			response.Error(c, errs.New(errs.CodeValidationFailure, "provide order lines or a X-Session-ID header"))
			return
		}
		cart, err := h.carts.Get(ctx, sessionID)
		if err != nil {
			response.Error(c, err)
			return
		}
		if cart.Empty() {
			response.Error(c, errs.New(errs.CodeValidationFailure, "cart is empty"))
			return
		}
		for _, line := range cart.Lines {
			lines = append(lines, application.CheckoutLine{ProductID: line.ProductID, Quantity: line.Quantity})
		}
		fromCart = true
	}

	order, err := h.service.Checkout(ctx, &application.CheckoutCommand{
		UserID:            middleware.UserID(c),
		Lines:             lines,
		FulfillmentMethod: req.FulfillmentMethod,
		DeliveryAddress:   req.DeliveryAddress,
		ContactNumber:     req.ContactNumber,
		GCashReference:    req.GCashReference,
		PaymentProofRef:   req.PaymentProofRef,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if fromCart {
		if err := h.carts.Clear(ctx, sessionID); err != nil {
			// 订单已创建，购物车清理失败只记日志
			logger.Warn(ctx, "Failed to clear cart after checkout", "session_id", sessionID, "error", err)
		}
	}

	response.Created(c, order)
}

// ListMyOrders 买家分页列出自己的订单
func (h *Handler) ListMyOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, pagination, err := h.service.ListMyOrders(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"orders":     orders,
		"pagination": pagination,
	})
}

// ListOrders 店家分页列出订单
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := domain.Status(c.Query("status"))

	orders, pagination, err := h.service.ListOrders(c.Request.Context(), status, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"orders":     orders,
		"pagination": pagination,
	})
}

// GetOrder 查询单个订单
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), id, middleware.UserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// SubmitPayment 买家补交支付凭证
func (h *Handler) SubmitPayment(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var cmd application.SubmitPaymentCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	order, err := h.service.SubmitPayment(c.Request.Context(), id, middleware.UserID(c), &cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// ConfirmPayment 店家确认支付
func (h *Handler) ConfirmPayment(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// Reject 店家拒绝支付
func (h *Handler) Reject(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req rejectRequest
	_ = c.ShouldBindJSON(&req)

	order, err := h.service.Reject(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// Complete 完成订单
func (h *Handler) Complete(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.Complete(c.Request.Context(), id, middleware.UserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// Cancel 取消订单
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.service.Cancel(c.Request.Context(), id, middleware.UserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// UpdateStatus 店家手工修改状态
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), id, domain.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, errs.Newf(errs.CodeValidationFailure, "invalid order id: %s", c.Param("id")))
		return 0, false
	}
	return uint(id), true
}
