// Package application 预约的应用服务：预约购物车、提交、审核与履约
package application

import (
	"context"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
)

// TxRunner 事务执行器，由 pkg/db 实现
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProductReader 商品查询端口，由 catalog 仓储实现
type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error)
}

// Notifier 通知端口，由 notification 模块的 Recorder 实现
type Notifier interface {
	NotifyAdmin(ctx context.Context, typ string, title, message string, ref notifapp.Ref) error
	NotifyCustomer(ctx context.Context, userID string, typ string, title, message string, ref notifapp.Ref) error
}
