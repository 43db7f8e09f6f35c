// Package domain 站内通知的领域模型
package domain

import "gorm.io/gorm"

// Type 通知类型
type Type string

const (
	// TypeLowStock 库存低于阈值
	TypeLowStock Type = "low_stock"

	// TypeOrderSubmitted 新订单已提交
	TypeOrderSubmitted Type = "order_submitted"
	// TypePaymentPending 买家已提交支付凭证，待审核
	TypePaymentPending Type = "payment_pending"
	// TypePaymentRejected 支付审核未通过
	TypePaymentRejected Type = "payment_rejected"
	// TypeReadyForPickup 订单已备好待自提
	TypeReadyForPickup Type = "ready_for_pickup"
	// TypeOutForDelivery 订单已发出配送
	TypeOutForDelivery Type = "out_for_delivery"
	// TypeOrderCompleted 订单已完成
	TypeOrderCompleted Type = "order_completed"
	// TypeOrderCancelled 订单已取消
	TypeOrderCancelled Type = "order_cancelled"

	// TypeReservationSubmitted 新预约已提交
	TypeReservationSubmitted Type = "reservation_submitted"
	// TypeReservationConfirmed 预约已确认，待支付定金
	TypeReservationConfirmed Type = "reservation_confirmed"
	// TypeReservationRejected 预约被拒绝
	TypeReservationRejected Type = "reservation_rejected"
	// TypeReservationCompleted 预约已完成
	TypeReservationCompleted Type = "reservation_completed"
	// TypeReservationCancelled 预约已取消
	TypeReservationCancelled Type = "reservation_cancelled"
)

// Notification 站内通知
// UserID 为 nil 时表示管理员通知，所有员工可见
type Notification struct {
	gorm.Model
	// 收件人，nil 表示管理员受众
	UserID *string `gorm:"column:user_id;type:varchar(64);index" json:"user_id,omitempty"`
	// 通知类型
	Type Type `gorm:"column:type;type:varchar(40);index;not null" json:"type"`
	// 标题
	Title string `gorm:"column:title;type:varchar(255);not null" json:"title"`
	// 正文
	Message string `gorm:"column:message;type:text" json:"message"`
	// 是否已读（read 是 MySQL 保留字）
	Read bool `gorm:"column:is_read;not null;default:false" json:"read"`
	// 关联订单
	OrderID *uint `gorm:"column:order_id;index" json:"order_id,omitempty"`
	// 关联预约
	ReservationID *uint `gorm:"column:reservation_id;index" json:"reservation_id,omitempty"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// ForAdmin 是否为管理员通知
func (n *Notification) ForAdmin() bool {
	return n.UserID == nil
}
