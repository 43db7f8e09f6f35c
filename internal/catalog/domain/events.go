package domain

import "time"

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	Timestamp time.Time `json:"timestamp"`
}

// EventName 事件类型名
func (ProductCreatedEvent) EventName() string { return "ProductCreatedEvent" }

// ProductUpdatedEvent 商品更新事件
type ProductUpdatedEvent struct {
	ProductID uint      `json:"product_id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Stock     int       `json:"stock"`
	Timestamp time.Time `json:"timestamp"`
}

// EventName 事件类型名
func (ProductUpdatedEvent) EventName() string { return "ProductUpdatedEvent" }

// ProductStockChangedEvent 商品库存变更事件
type ProductStockChangedEvent struct {
	ProductID uint      `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
	Timestamp time.Time `json:"timestamp"`
}

// EventName 事件类型名
func (ProductStockChangedEvent) EventName() string { return "ProductStockChangedEvent" }
