package application

import (
	"github.com/wyfcoding/storefront/internal/reservation/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// Service 预约应用服务门面
type Service struct {
	*CommandService
	*QueryService
	Cart *CartService
}

// NewService 创建预约应用服务
func NewService(
	repo domain.Repository,
	carts domain.CartRepository,
	products ProductReader,
	notifier Notifier,
	tx TxRunner,
	publisher domain.EventPublisher,
	topic string,
	m *metrics.Metrics,
) *Service {
	return &Service{
		CommandService: NewCommandService(repo, carts, products, notifier, tx, publisher, topic, m),
		QueryService:   NewQueryService(repo),
		Cart:           NewCartService(carts, products),
	}
}
