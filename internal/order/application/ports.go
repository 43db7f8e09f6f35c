// Package application 订单的应用服务：下单、支付审核、履约与取消
package application

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
	"github.com/wyfcoding/storefront/pkg/config"
)

// TxRunner 事务执行器，由 pkg/db 实现
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductGateway 商品目录访问端口，由 catalog 仓储实现
type ProductGateway interface {
	GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error)
	DecrementStock(ctx context.Context, productID uint, quantity int) error
	RestoreStock(ctx context.Context, productID uint, quantity int) error
}

// Notifier 通知端口，由 notification 模块的 Recorder 实现
type Notifier interface {
	NotifyAdmin(ctx context.Context, typ string, title, message string, ref notifapp.Ref) error
	NotifyCustomer(ctx context.Context, userID string, typ string, title, message string, ref notifapp.Ref) error
}

// Pricing 订单定价参数，由门店配置构造
type Pricing struct {
	// 免运费的最低件数
	FreeDeliveryQuantity int
	// 未达免运费件数时的运费
	ShippingFee decimal.Decimal
	// 配送订单定金比例（百分比）
	DownpaymentPercent decimal.Decimal
	// 低库存通知阈值
	LowStockThreshold int
}

// NewPricing 从门店配置构造定价参数
func NewPricing(cfg config.StoreConfig) (Pricing, error) {
	fee, err := decimal.NewFromString(cfg.ShippingFee)
	if err != nil {
		return Pricing{}, fmt.Errorf("invalid shipping fee %q: %w", cfg.ShippingFee, err)
	}
	return Pricing{
		FreeDeliveryQuantity: cfg.FreeDeliveryQuantity,
		ShippingFee:          fee,
		DownpaymentPercent:   decimal.NewFromInt(int64(cfg.DeliveryDownpaymentPercent)),
		LowStockThreshold:    cfg.LowStockThreshold,
	}, nil
}

// ShippingFeeFor 计算给定件数的运费，达到免运费件数时为零
func (p Pricing) ShippingFeeFor(delivery bool, totalQuantity int) decimal.Decimal {
	if !delivery {
		return decimal.Zero
	}
	if p.FreeDeliveryQuantity > 0 && totalQuantity >= p.FreeDeliveryQuantity {
		return decimal.Zero
	}
	return p.ShippingFee
}

// DownpaymentFor 计算配送订单的定金
func (p Pricing) DownpaymentFor(delivery bool, total decimal.Decimal) decimal.Decimal {
	if !delivery {
		return decimal.Zero
	}
	return total.Mul(p.DownpaymentPercent).Div(decimal.NewFromInt(100)).Round(2)
}
