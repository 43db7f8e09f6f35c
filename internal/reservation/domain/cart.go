package domain

import (
	"time"

	"gorm.io/gorm"
)

// Cart 持久化的预约购物车，每个买家一个
type Cart struct {
	gorm.Model
	// 买家 ID
	UserID string `gorm:"column:user_id;type:varchar(64);uniqueIndex;not null" json:"user_id"`
	// 购物车行
	Items []CartItem `gorm:"foreignKey:CartID" json:"items"`
}

// TableName 指定表名
func (Cart) TableName() string {
	return "reservation_carts"
}

// CartItem 预约购物车行
// 同一购物车内 (商品, 日期, 时段) 唯一，重复加入时合并件数
type CartItem struct {
	gorm.Model
	CartID uint `gorm:"column:cart_id;uniqueIndex:uniq_cart_line;not null" json:"cart_id"`
	// 商品 ID
	ProductID uint `gorm:"column:product_id;uniqueIndex:uniq_cart_line;not null" json:"product_id"`
	// 交付日期
	ReservationDate time.Time `gorm:"column:reservation_date;type:date;uniqueIndex:uniq_cart_line;not null" json:"reservation_date"`
	// 交付时段，HH:MM
	ReservationTime string `gorm:"column:reservation_time;type:varchar(10);uniqueIndex:uniq_cart_line;not null" json:"reservation_time"`
	// 件数
	Quantity int `gorm:"column:quantity;not null" json:"quantity"`
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "reservation_cart_items"
}
