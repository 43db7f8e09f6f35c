package application

import (
	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// Service 订单应用服务门面
type Service struct {
	*CommandService
	*QueryService
}

// NewService 创建订单应用服务
func NewService(
	repo domain.Repository,
	products ProductGateway,
	notifier Notifier,
	tx TxRunner,
	publisher domain.EventPublisher,
	topic string,
	pricing Pricing,
	m *metrics.Metrics,
) *Service {
	return &Service{
		CommandService: NewCommandService(repo, products, notifier, tx, publisher, topic, pricing, m),
		QueryService:   NewQueryService(repo),
	}
}
