// Package application 站内通知的应用服务
package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// Ref 通知关联的业务实体
type Ref struct {
	OrderID       *uint
	ReservationID *uint
}

// Recorder 通知写入器，供订单/预约模块在业务事务内记录通知
type Recorder struct {
	repo    domain.Repository
	metrics *metrics.Metrics
}

// NewRecorder 创建通知写入器
func NewRecorder(repo domain.Repository, m *metrics.Metrics) *Recorder {
	return &Recorder{repo: repo, metrics: m}
}

// NotifyAdmin 记录一条管理员通知
func (r *Recorder) NotifyAdmin(ctx context.Context, typ string, title, message string, ref Ref) error {
	return r.append(ctx, &domain.Notification{
		UserID:        nil,
		Type:          domain.Type(typ),
		Title:         title,
		Message:       message,
		OrderID:       ref.OrderID,
		ReservationID: ref.ReservationID,
	})
}

// NotifyCustomer 记录一条买家通知
func (r *Recorder) NotifyCustomer(ctx context.Context, userID string, typ string, title, message string, ref Ref) error {
	uid := userID
	return r.append(ctx, &domain.Notification{
		UserID:        &uid,
		Type:          domain.Type(typ),
		Title:         title,
		Message:       message,
		OrderID:       ref.OrderID,
		ReservationID: ref.ReservationID,
	})
}

func (r *Recorder) append(ctx context.Context, n *domain.Notification) error {
	if err := r.repo.Append(ctx, n); err != nil {
		return fmt.Errorf("failed to append notification: %w", err)
	}
	if r.metrics != nil {
		r.metrics.NotificationsTotal.Inc()
	}
	return nil
}
