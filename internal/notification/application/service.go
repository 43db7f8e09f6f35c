package application

import (
	"github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// Service 通知应用服务门面
type Service struct {
	*CommandService
	*QueryService
	Recorder *Recorder
}

// NewService 创建通知应用服务
func NewService(repo domain.Repository, m *metrics.Metrics) *Service {
	return &Service{
		CommandService: NewCommandService(repo),
		QueryService:   NewQueryService(repo),
		Recorder:       NewRecorder(repo, m),
	}
}
