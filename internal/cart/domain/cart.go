// Package domain 会话购物车的领域模型
// 购物车是浏览期间的临时状态，存放在 Redis，结账后清空
package domain

import (
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/storefront/pkg/errs"
)

// Line 购物车中的一行商品
type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart 会话购物车
type Cart struct {
	SessionID string         `json:"session_id"`
	Lines     map[uint]*Line `json:"lines"`
}

// NewCart 创建空购物车
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID: sessionID,
		Lines:     make(map[uint]*Line),
	}
}

// Add 加入商品，同一商品合并件数，合并结果不超过现有库存
func (c *Cart) Add(productID uint, name string, unitPrice decimal.Decimal, quantity, stock int) error {
	if quantity < 1 {
		return errs.New(errs.CodeValidationFailure, "quantity must be at least 1")
	}

	existing := 0
	if line, ok := c.Lines[productID]; ok {
		existing = line.Quantity
	}
	if existing+quantity > stock {
		return errs.Newf(errs.CodeInsufficientStock, "only %d pieces of %q available", stock, name)
	}

	if line, ok := c.Lines[productID]; ok {
		line.Quantity += quantity
		line.Name = name
		line.UnitPrice = unitPrice
	} else {
		c.Lines[productID] = &Line{
			ProductID: productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
		}
	}
	return nil
}

// SetQuantity 直接设置件数，0 表示移除
func (c *Cart) SetQuantity(productID uint, quantity, stock int) error {
	if quantity < 0 {
		return errs.New(errs.CodeValidationFailure, "quantity cannot be negative")
	}
	line, ok := c.Lines[productID]
	if !ok {
		return errs.Newf(errs.CodeNotFound, "product %d is not in the cart", productID)
	}
	if quantity == 0 {
		delete(c.Lines, productID)
		return nil
	}
	if quantity > stock {
		return errs.Newf(errs.CodeInsufficientStock, "only %d pieces of %q available", stock, line.Name)
	}
	line.Quantity = quantity
	return nil
}

// Remove 移除商品
func (c *Cart) Remove(productID uint) {
	delete(c.Lines, productID)
}

// Empty 购物车是否为空
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// TotalQuantity 总件数
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Subtotal 小计
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return subtotal
}
