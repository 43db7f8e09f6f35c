// Package http 预约的 HTTP 接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/storefront/internal/reservation/application"
	"github.com/wyfcoding/storefront/internal/reservation/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/response"
)

// Handler 预约 HTTP 处理器
type Handler struct {
	service *application.Service
}

// NewHandler 创建预约 HTTP 处理器
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reservations := router.Group("/reservations")
	reservations.Use(middleware.RequireUser())
	{
		reservations.GET("/cart", h.GetCart)
		reservations.POST("/cart/lines", h.AddCartLine)
		reservations.PUT("/cart/lines/:itemId", h.UpdateCartLine)
		reservations.DELETE("/cart/lines/:itemId", h.RemoveCartLine)

		reservations.POST("", h.Submit)
		reservations.GET("", h.ListMyReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.POST("/:id/payment", h.SubmitPayment)
		reservations.POST("/:id/cancel", h.Cancel)
	}

	admin := router.Group("/admin/reservations")
	admin.Use(middleware.RequireStaff())
	{
		admin.GET("", h.ListReservations)
		admin.GET("/:id", h.GetReservation)
		admin.POST("/:id/confirm", h.Confirm)
		admin.POST("/:id/accept-payment", h.AcceptPayment)
		admin.POST("/:id/reject", h.Reject)
		admin.POST("/:id/complete", h.Complete)
		admin.POST("/:id/cancel", h.Cancel)
		admin.PUT("/:id/status", h.UpdateStatus)
	}
}

type updateCartLineRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

type rejectRequest struct {
	Note string `json:"note"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetCart 获取预约购物车
func (h *Handler) GetCart(c *gin.Context) {
	cart, err := h.service.Cart.GetCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// AddCartLine 加入预约购物车
func (h *Handler) AddCartLine(c *gin.Context) {
	var cmd application.AddCartLineCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	cart, err := h.service.Cart.AddLine(c.Request.Context(), middleware.UserID(c), &cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// UpdateCartLine 修改预约购物车行
func (h *Handler) UpdateCartLine(c *gin.Context) {
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	var req updateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	cart, err := h.service.Cart.UpdateLine(c.Request.Context(), middleware.UserID(c), itemID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// RemoveCartLine 移除预约购物车行
func (h *Handler) RemoveCartLine(c *gin.Context) {
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}

	cart, err := h.service.Cart.RemoveLine(c.Request.Context(), middleware.UserID(c), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// Submit 从预约购物车提交预约
func (h *Handler) Submit(c *gin.Context) {
	var cmd application.SubmitCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}
	cmd.UserID = middleware.UserID(c)

	reservation, err := h.service.Submit(c.Request.Context(), &cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reservation)
}

// ListMyReservations 买家分页列出自己的预约
func (h *Handler) ListMyReservations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	reservations, pagination, err := h.service.ListMyReservations(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"reservations": reservations,
		"pagination":   pagination,
	})
}

// ListReservations 店家分页列出预约
func (h *Handler) ListReservations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := domain.Status(c.Query("status"))

	reservations, pagination, err := h.service.ListReservations(c.Request.Context(), status, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"reservations": reservations,
		"pagination":   pagination,
	})
}

// GetReservation 查询单个预约
func (h *Handler) GetReservation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.service.GetReservation(c.Request.Context(), id, middleware.UserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

// SubmitPayment 买家提交定金凭证
func (h *Handler) SubmitPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cmd application.SubmitPaymentCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	reservation, err := h.service.SubmitPayment(c.Request.Context(), id, middleware.UserID(c), &cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

// Confirm 店家确认档期
func (h *Handler) Confirm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

// AcceptPayment 店家核对定金凭证
func (h *Handler) AcceptPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.service.AcceptPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

// Reject 店家拒绝预约
func (h *Handler) Reject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req rejectRequest
	_ = c.ShouldBindJSON(&req)

	reservation, err := h.service.Reject(c.Request.Context(), id, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

// Complete 店家标记完成
func (h *Handler) Complete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

// Cancel 取消预约
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reservation, err := h.service.Cancel(c.Request.Context(), id, middleware.UserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

// UpdateStatus 店家手工修改状态
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	reservation, err := h.service.UpdateStatus(c.Request.Context(), id, domain.Status(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reservation)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.Error(c, errs.Newf(errs.CodeValidationFailure, "invalid %s: %s", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}
