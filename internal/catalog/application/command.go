// Package application 商品目录的应用服务
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// CreateProductCommand 创建商品的参数
type CreateProductCommand struct {
	Name                          string   `json:"name" binding:"required"`
	Description                   string   `json:"description"`
	Price                         string   `json:"price" binding:"required"`
	Stock                         int      `json:"stock"`
	IsAvailable                   *bool    `json:"is_available"`
	Categories                    []string `json:"categories" binding:"required"`
	MinOrderQuantity              int      `json:"min_order_quantity"`
	PreparationDays               int      `json:"preparation_days"`
	ReservationDownpaymentPercent string   `json:"reservation_downpayment_percent"`
	ImageRef                      string   `json:"image_ref"`
}

// UpdateProductCommand 更新商品的参数，nil 字段不修改
type UpdateProductCommand struct {
	Name                          *string  `json:"name"`
	Description                   *string  `json:"description"`
	Price                         *string  `json:"price"`
	Stock                         *int     `json:"stock"`
	IsAvailable                   *bool    `json:"is_available"`
	Categories                    []string `json:"categories"`
	MinOrderQuantity              *int     `json:"min_order_quantity"`
	PreparationDays               *int     `json:"preparation_days"`
	ReservationDownpaymentPercent *string  `json:"reservation_downpayment_percent"`
	ImageRef                      *string  `json:"image_ref"`
}

// CommandService 商品写操作服务
type CommandService struct {
	repo      domain.ProductRepository
	publisher domain.EventPublisher
	topic     string
}

// NewCommandService 创建商品写操作服务
func NewCommandService(repo domain.ProductRepository, publisher domain.EventPublisher, topic string) *CommandService {
	return &CommandService{repo: repo, publisher: publisher, topic: topic}
}

// CreateProduct 创建商品
func (s *CommandService) CreateProduct(ctx context.Context, cmd *CreateProductCommand) (*domain.Product, error) {
	price, err := decimal.NewFromString(cmd.Price)
	if err != nil || price.IsNegative() {
		return nil, errs.Newf(errs.CodeValidationFailure, "invalid price: %s", cmd.Price)
	}
	if cmd.Stock < 0 {
		return nil, errs.New(errs.CodeValidationFailure, "stock cannot be negative")
	}

	categories := toCategorySet(cmd.Categories)
	if err := categories.Validate(); err != nil {
		return nil, errs.Wrap(errs.CodeValidationFailure, "invalid categories", err)
	}
	if len(categories) == 0 {
		return nil, errs.New(errs.CodeValidationFailure, "at least one category is required")
	}

	downpayment := decimal.NewFromInt(20)
	if cmd.ReservationDownpaymentPercent != "" {
		downpayment, err = decimal.NewFromString(cmd.ReservationDownpaymentPercent)
		if err != nil || downpayment.IsNegative() || downpayment.GreaterThan(decimal.NewFromInt(100)) {
			return nil, errs.Newf(errs.CodeValidationFailure, "invalid downpayment percent: %s", cmd.ReservationDownpaymentPercent)
		}
	}

	product := &domain.Product{
		Name:                          cmd.Name,
		Description:                   cmd.Description,
		Price:                         price,
		Stock:                         cmd.Stock,
		IsAvailable:                   true,
		Categories:                    categories,
		MinOrderQuantity:              defaultIfZero(cmd.MinOrderQuantity, 1),
		PreparationDays:               defaultIfZero(cmd.PreparationDays, 3),
		ReservationDownpaymentPercent: downpayment,
		ImageRef:                      cmd.ImageRef,
	}
	if cmd.IsAvailable != nil {
		product.IsAvailable = *cmd.IsAvailable
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.publishEvent(ctx, product, domain.ProductCreatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price.String(),
		Stock:     product.Stock,
		Timestamp: time.Now(),
	})

	logger.Info(ctx, "Product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// UpdateProduct 更新商品
func (s *CommandService) UpdateProduct(ctx context.Context, id uint, cmd *UpdateProductCommand) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStock := product.Stock

	if cmd.Name != nil {
		product.Name = *cmd.Name
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
	}
	if cmd.Price != nil {
		price, err := decimal.NewFromString(*cmd.Price)
		if err != nil || price.IsNegative() {
			return nil, errs.Newf(errs.CodeValidationFailure, "invalid price: %s", *cmd.Price)
		}
		product.Price = price
	}
	if cmd.Stock != nil {
		if *cmd.Stock < 0 {
			return nil, errs.New(errs.CodeValidationFailure, "stock cannot be negative")
		}
		product.Stock = *cmd.Stock
	}
	if cmd.IsAvailable != nil {
		product.IsAvailable = *cmd.IsAvailable
	}
	if cmd.Categories != nil {
		categories := toCategorySet(cmd.Categories)
		if err := categories.Validate(); err != nil {
			return nil, errs.Wrap(errs.CodeValidationFailure, "invalid categories", err)
		}
		product.Categories = categories
	}
	if cmd.MinOrderQuantity != nil {
		if *cmd.MinOrderQuantity < 1 {
			return nil, errs.New(errs.CodeValidationFailure, "min order quantity must be at least 1")
		}
		product.MinOrderQuantity = *cmd.MinOrderQuantity
	}
	if cmd.PreparationDays != nil {
		if *cmd.PreparationDays < 0 {
			return nil, errs.New(errs.CodeValidationFailure, "preparation days cannot be negative")
		}
		product.PreparationDays = *cmd.PreparationDays
	}
	if cmd.ReservationDownpaymentPercent != nil {
		downpayment, err := decimal.NewFromString(*cmd.ReservationDownpaymentPercent)
		if err != nil || downpayment.IsNegative() || downpayment.GreaterThan(decimal.NewFromInt(100)) {
			return nil, errs.Newf(errs.CodeValidationFailure, "invalid downpayment percent: %s", *cmd.ReservationDownpaymentPercent)
		}
		product.ReservationDownpaymentPercent = downpayment
	}
	if cmd.ImageRef != nil {
		product.ImageRef = *cmd.ImageRef
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.publishEvent(ctx, product, domain.ProductUpdatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price.String(),
		Stock:     product.Stock,
		Timestamp: time.Now(),
	})
	if oldStock != product.Stock {
		s.publishEvent(ctx, product, domain.ProductStockChangedEvent{
			ProductID: product.ID,
			OldStock:  oldStock,
			NewStock:  product.Stock,
			Timestamp: time.Now(),
		})
	}

	logger.Info(ctx, "Product updated", "product_id", product.ID)
	return product, nil
}

// DeleteProduct 删除商品
func (s *CommandService) DeleteProduct(ctx context.Context, id uint) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	logger.Info(ctx, "Product deleted", "product_id", id)
	return nil
}

func (s *CommandService) publishEvent(ctx context.Context, product *domain.Product, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, s.topic, fmt.Sprintf("product-%d", product.ID), event); err != nil {
		logger.Error(ctx, "Failed to publish product event", "product_id", product.ID, "error", err)
	}
}

func toCategorySet(values []string) domain.CategorySet {
	result := make(domain.CategorySet, 0, len(values))
	for _, v := range values {
		result = append(result, domain.Category(v))
	}
	return result
}

func defaultIfZero(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
