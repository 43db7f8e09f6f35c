// Package domain 商品目录的领域模型
package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category 商品分类
type Category string

const (
	// CategoryOrderNow 可立即下单
	CategoryOrderNow Category = "order_now"
	// CategoryReservation 可预约
	CategoryReservation Category = "reservation"
)

// Valid 判断分类值是否合法
func (c Category) Valid() bool {
	switch c {
	case CategoryOrderNow, CategoryReservation:
		return true
	}
	return false
}

// CategorySet 商品分类集合，数据库中存储为逗号分隔的字符串
type CategorySet []Category

// Has 判断是否包含指定分类
func (s CategorySet) Has(c Category) bool {
	for _, v := range s {
		if v == c {
			return true
		}
	}
	return false
}

// Validate 校验集合中的每个分类值
func (s CategorySet) Validate() error {
	for _, v := range s {
		if !v.Valid() {
			return fmt.Errorf("unknown category: %s", v)
		}
	}
	return nil
}

// Value 实现 driver.Valuer
func (s CategorySet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(s))
	for _, v := range s {
		parts = append(parts, string(v))
	}
	return strings.Join(parts, ","), nil
}

// Scan 实现 sql.Scanner
func (s *CategorySet) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into CategorySet", value)
	}

	if raw == "" {
		*s = nil
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make(CategorySet, 0, len(parts))
	for _, p := range parts {
		result = append(result, Category(strings.TrimSpace(p)))
	}
	*s = result
	return nil
}

// Product 商品实体
type Product struct {
	gorm.Model
	// 商品名称
	Name string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	// 商品描述
	Description string `gorm:"column:description;type:text" json:"description"`
	// 单价
	Price decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null" json:"price"`
	// 库存件数，始终非负，仅在订单确认时扣减
	Stock int `gorm:"column:stock;not null;default:0" json:"stock"`
	// 是否上架
	IsAvailable bool `gorm:"column:is_available;not null;default:true" json:"is_available"`
	// 分类集合
	Categories CategorySet `gorm:"column:categories;type:varchar(100)" json:"categories"`
	// 最小下单件数
	MinOrderQuantity int `gorm:"column:min_order_quantity;not null;default:1" json:"min_order_quantity"`
	// 预约所需提前天数
	PreparationDays int `gorm:"column:preparation_days;not null;default:3" json:"preparation_days"`
	// 预约定金比例（百分比）
	ReservationDownpaymentPercent decimal.Decimal `gorm:"column:reservation_downpayment_percent;type:decimal(5,2);not null;default:20" json:"reservation_downpayment_percent"`
	// 商品图片的对象存储引用
	ImageRef string `gorm:"column:image_ref;type:varchar(255)" json:"image_ref"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// InStock 是否有库存
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// Orderable 是否可立即下单
func (p *Product) Orderable() bool {
	return p.IsAvailable && p.Categories.Has(CategoryOrderNow)
}

// Reservable 是否可预约
func (p *Product) Reservable() bool {
	return p.IsAvailable && p.Categories.Has(CategoryReservation)
}

// EarliestReservationDate 最早可预约日期
func (p *Product) EarliestReservationDate(today time.Time) time.Time {
	days := p.PreparationDays
	if days <= 0 {
		days = 3
	}
	return today.AddDate(0, 0, days)
}

// DownpaymentFor 按定金比例计算给定金额的定金
func (p *Product) DownpaymentFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.ReservationDownpaymentPercent).Div(decimal.NewFromInt(100)).Round(2)
}
