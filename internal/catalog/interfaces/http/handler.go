// Package http 商品目录的 HTTP 接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/middleware"
	"github.com/wyfcoding/storefront/pkg/response"
)

// Handler 商品目录 HTTP 处理器
type Handler struct {
	service *application.Service
}

// NewHandler 创建商品目录 HTTP 处理器
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
	}

	admin := router.Group("/admin/products")
	admin.Use(middleware.RequireStaff())
	{
		admin.POST("", h.CreateProduct)
		admin.PUT("/:id", h.UpdateProduct)
		admin.DELETE("/:id", h.DeleteProduct)
	}
}

// ListProducts 分页列出商品
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	category := domain.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		response.Error(c, errs.Newf(errs.CodeValidationFailure, "unknown category: %s", category))
		return
	}

	products, pagination, err := h.service.ListProducts(c.Request.Context(), category, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"products":   products,
		"pagination": pagination,
	})
}

// GetProduct 获取单个商品
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var cmd application.CreateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), &cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var cmd application.UpdateProductCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.Error(c, errs.Wrap(errs.CodeValidationFailure, "invalid request body", err))
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), id, &cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": id})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errs.Newf(errs.CodeValidationFailure, "invalid id: %s", raw)
	}
	return uint(id), nil
}
