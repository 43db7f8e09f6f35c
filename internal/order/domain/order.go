// Package domain 订单的领域模型与状态机
package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FulfillmentMethod 履约方式
type FulfillmentMethod string

const (
	// FulfillmentPickup 到店自提
	FulfillmentPickup FulfillmentMethod = "pickup"
	// FulfillmentDelivery 配送
	FulfillmentDelivery FulfillmentMethod = "delivery"
)

// Valid 判断履约方式是否合法
func (m FulfillmentMethod) Valid() bool {
	return m == FulfillmentPickup || m == FulfillmentDelivery
}

// Order 订单聚合根
type Order struct {
	gorm.Model
	// 对外订单号
	OrderNo string `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null" json:"order_no"`
	// 买家 ID
	UserID string `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	// 当前状态
	Status Status `gorm:"column:status;type:varchar(30);index;not null" json:"status"`
	// 履约方式
	FulfillmentMethod FulfillmentMethod `gorm:"column:fulfillment_method;type:varchar(20);not null" json:"fulfillment_method"`
	// 配送地址，自提时为空
	DeliveryAddress string `gorm:"column:delivery_address;type:varchar(500)" json:"delivery_address,omitempty"`
	// 联系电话
	ContactNumber string `gorm:"column:contact_number;type:varchar(30);not null" json:"contact_number"`
	// GCash 交易参考号
	GCashReference string `gorm:"column:gcash_reference;type:varchar(100)" json:"gcash_reference,omitempty"`
	// 支付凭证截图的对象存储引用
	PaymentProofRef string `gorm:"column:payment_proof_ref;type:varchar(255)" json:"payment_proof_ref,omitempty"`
	// 商品小计
	Subtotal decimal.Decimal `gorm:"column:subtotal;type:decimal(12,2);not null" json:"subtotal"`
	// 运费
	ShippingFee decimal.Decimal `gorm:"column:shipping_fee;type:decimal(10,2);not null" json:"shipping_fee"`
	// 应付总额 = 小计 + 运费
	Total decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
	// 配送订单需先付的定金
	Downpayment decimal.Decimal `gorm:"column:downpayment;type:decimal(12,2);not null" json:"downpayment"`
	// 订单行
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单行，记录下单时的商品快照
type OrderItem struct {
	gorm.Model
	OrderID uint `gorm:"column:order_id;index;not null" json:"order_id"`
	// 商品 ID
	ProductID uint `gorm:"column:product_id;index;not null" json:"product_id"`
	// 下单时的商品名称
	ProductName string `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	// 下单时的单价
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	// 件数
	Quantity int `gorm:"column:quantity;not null" json:"quantity"`
	// 行小计
	LineTotal decimal.Decimal `gorm:"column:line_total;type:decimal(12,2);not null" json:"line_total"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// BeforeSave 保存前重算各行小计与订单金额，保证金额与行数据一致
func (o *Order) BeforeSave(_ *gorm.DB) error {
	o.Recalculate()
	return nil
}

// Recalculate 由订单行重算小计与总额
// 运费与定金由应用层在创建时定价，此处只保证加总一致
func (o *Order) Recalculate() {
	subtotal := decimal.Zero
	for i := range o.Items {
		item := &o.Items[i]
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(item.LineTotal)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.ShippingFee)
}

// TotalQuantity 订单总件数
func (o *Order) TotalQuantity() int {
	total := 0
	for i := range o.Items {
		total += o.Items[i].Quantity
	}
	return total
}

// HasPaymentProof 是否已提交支付凭证
func (o *Order) HasPaymentProof() bool {
	return o.GCashReference != "" && o.PaymentProofRef != ""
}
