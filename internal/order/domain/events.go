package domain

import "time"

// OrderSubmittedEvent 订单提交事件
type OrderSubmittedEvent struct {
	OrderID           uint      `json:"order_id"`
	UserID            string    `json:"user_id"`
	FulfillmentMethod string    `json:"fulfillment_method"`
	Total             string    `json:"total"`
	Timestamp         time.Time `json:"timestamp"`
}

// EventName 事件类型名
func (OrderSubmittedEvent) EventName() string { return "OrderSubmittedEvent" }

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID   uint      `json:"order_id"`
	UserID    string    `json:"user_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// EventName 事件类型名
func (OrderStatusChangedEvent) EventName() string { return "OrderStatusChangedEvent" }
