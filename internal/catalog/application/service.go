package application

import "github.com/wyfcoding/storefront/internal/catalog/domain"

// Service 商品目录应用服务门面，组合读写服务
type Service struct {
	*CommandService
	*QueryService
}

// NewService 创建商品目录应用服务
func NewService(repo domain.ProductRepository, publisher domain.EventPublisher, topic string) *Service {
	return &Service{
		CommandService: NewCommandService(repo, publisher, topic),
		QueryService:   NewQueryService(repo),
	}
}
