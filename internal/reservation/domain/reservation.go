// Package domain 预约的领域模型与状态机
// 预约商品按单制作，不占用现货库存
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Reservation 预约聚合根
type Reservation struct {
	gorm.Model
	// 对外预约号
	ReservationNo string `gorm:"column:reservation_no;type:varchar(32);uniqueIndex;not null" json:"reservation_no"`
	// 买家 ID
	UserID string `gorm:"column:user_id;type:varchar(64);index;not null" json:"user_id"`
	// 当前状态
	Status Status `gorm:"column:status;type:varchar(30);index;not null" json:"status"`
	// 联系电话
	ContactNumber string `gorm:"column:contact_number;type:varchar(30);not null" json:"contact_number"`
	// 买家备注
	Notes string `gorm:"column:notes;type:text" json:"notes,omitempty"`
	// GCash 交易参考号
	GCashReference string `gorm:"column:gcash_reference;type:varchar(100)" json:"gcash_reference,omitempty"`
	// 定金凭证截图的对象存储引用
	PaymentProofRef string `gorm:"column:payment_proof_ref;type:varchar(255)" json:"payment_proof_ref,omitempty"`
	// 预约总额
	Total decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
	// 应付定金，按各商品定金比例加总
	Downpayment decimal.Decimal `gorm:"column:downpayment;type:decimal(12,2);not null" json:"downpayment"`
	// 店家审核备注（拒绝原因等）
	DecisionNote string `gorm:"column:decision_note;type:varchar(500)" json:"decision_note,omitempty"`
	// 预约行
	Items []ReservationItem `gorm:"foreignKey:ReservationID" json:"items"`
}

// TableName 指定表名
func (Reservation) TableName() string {
	return "reservations"
}

// ReservationItem 预约行，带交付日期与时段
type ReservationItem struct {
	gorm.Model
	ReservationID uint `gorm:"column:reservation_id;index;not null" json:"reservation_id"`
	// 商品 ID
	ProductID uint `gorm:"column:product_id;index;not null" json:"product_id"`
	// 预约时的商品名称
	ProductName string `gorm:"column:product_name;type:varchar(255);not null" json:"product_name"`
	// 预约时的单价
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unit_price"`
	// 件数
	Quantity int `gorm:"column:quantity;not null" json:"quantity"`
	// 交付日期
	ReservationDate time.Time `gorm:"column:reservation_date;type:date;not null" json:"reservation_date"`
	// 交付时段，HH:MM
	ReservationTime string `gorm:"column:reservation_time;type:varchar(10);not null" json:"reservation_time"`
	// 行小计
	LineTotal decimal.Decimal `gorm:"column:line_total;type:decimal(12,2);not null" json:"line_total"`
	// 该行应付定金
	DownpaymentDue decimal.Decimal `gorm:"column:downpayment_due;type:decimal(12,2);not null" json:"downpayment_due"`
}

// TableName 指定表名
func (ReservationItem) TableName() string {
	return "reservation_items"
}

// BeforeSave 保存前重算行小计与预约金额
func (r *Reservation) BeforeSave(_ *gorm.DB) error {
	r.Recalculate()
	return nil
}

// Recalculate 由预约行重算总额与定金
// 各行定金在创建时按商品定金比例算好，此处只保证加总一致
func (r *Reservation) Recalculate() {
	total := decimal.Zero
	downpayment := decimal.Zero
	for i := range r.Items {
		item := &r.Items[i]
		item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.LineTotal)
		downpayment = downpayment.Add(item.DownpaymentDue)
	}
	r.Total = total
	r.Downpayment = downpayment
}

// HasPaymentProof 是否已提交定金凭证
func (r *Reservation) HasPaymentProof() bool {
	return r.GCashReference != "" && r.PaymentProofRef != ""
}
