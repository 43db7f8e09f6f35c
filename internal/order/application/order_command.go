package application

import (
	"context"
	"fmt"
	"time"

	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
	notifdomain "github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// CommandService 订单写操作服务
// 所有状态变更与其通知、领域事件在同一数据库事务内提交
type CommandService struct {
	repo      domain.Repository
	products  ProductGateway
	notifier  Notifier
	tx        TxRunner
	publisher domain.EventPublisher
	topic     string
	pricing   Pricing
	metrics   *metrics.Metrics
	ids       *utils.SnowflakeID
}

// NewCommandService 创建订单写操作服务
func NewCommandService(
	repo domain.Repository,
	products ProductGateway,
	notifier Notifier,
	tx TxRunner,
	publisher domain.EventPublisher,
	topic string,
	pricing Pricing,
	m *metrics.Metrics,
) *CommandService {
	return &CommandService{
		repo:      repo,
		products:  products,
		notifier:  notifier,
		tx:        tx,
		publisher: publisher,
		topic:     topic,
		pricing:   pricing,
		metrics:   m,
		ids:       utils.NewSnowflakeID(1),
	}
}

// Checkout 从购物车行创建订单
// 库存在此处只做提示性检查，真正的扣减发生在店家确认支付时
func (s *CommandService) Checkout(ctx context.Context, cmd *CheckoutCommand) (*domain.Order, error) {
	if len(cmd.Lines) == 0 {
		return nil, errs.New(errs.CodeValidationFailure, "order has no lines")
	}
	method := domain.FulfillmentMethod(cmd.FulfillmentMethod)
	if !method.Valid() {
		return nil, errs.Newf(errs.CodeValidationFailure, "unknown fulfillment method: %s", cmd.FulfillmentMethod)
	}
	if method == domain.FulfillmentDelivery && cmd.DeliveryAddress == "" {
		return nil, errs.New(errs.CodeValidationFailure, "delivery address is required for delivery orders")
	}
	if cmd.ContactNumber == "" {
		return nil, errs.New(errs.CodeValidationFailure, "contact number is required")
	}
	if (cmd.GCashReference == "") != (cmd.PaymentProofRef == "") {
		return nil, errs.New(errs.CodeValidationFailure, "gcash reference and payment proof must be submitted together")
	}
	// 配送订单必须在下单时附上定金凭证
	if method == domain.FulfillmentDelivery && (cmd.GCashReference == "" || cmd.PaymentProofRef == "") {
		return nil, errs.New(errs.CodeValidationFailure, "delivery orders require the downpayment proof at checkout")
	}

	items := make([]domain.OrderItem, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		if line.Quantity < 1 {
			return nil, errs.Newf(errs.CodeValidationFailure, "invalid quantity %d for product %d", line.Quantity, line.ProductID)
		}
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Orderable() {
			return nil, errs.Newf(errs.CodeValidationFailure, "product %q is not available for ordering", product.Name)
		}
		if line.Quantity < product.MinOrderQuantity {
			return nil, errs.Newf(errs.CodeValidationFailure, "product %q requires at least %d pieces", product.Name, product.MinOrderQuantity)
		}
		if line.Quantity > product.Stock {
			return nil, errs.Newf(errs.CodeInsufficientStock, "insufficient stock for product %q", product.Name)
		}
		items = append(items, domain.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    line.Quantity,
		})
	}

	order := &domain.Order{
		OrderNo:           fmt.Sprintf("ORD-%d", s.ids.Generate()),
		UserID:            cmd.UserID,
		Status:            domain.StatusPending,
		FulfillmentMethod: method,
		DeliveryAddress:   cmd.DeliveryAddress,
		ContactNumber:     cmd.ContactNumber,
		GCashReference:    cmd.GCashReference,
		PaymentProofRef:   cmd.PaymentProofRef,
		Items:             items,
	}
	order.ShippingFee = s.pricing.ShippingFeeFor(method == domain.FulfillmentDelivery, order.TotalQuantity())
	order.Recalculate()
	order.Downpayment = s.pricing.DownpaymentFor(method == domain.FulfillmentDelivery, order.Total)
	if order.HasPaymentProof() {
		order.Status = domain.StatusPendingConfirmation
	}

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		// 新订单只通知管理员，买家不需要自己下单的回执
		if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypeOrderSubmitted),
			"New order received",
			fmt.Sprintf("Order #%d (%s, %s) for %s", order.ID, order.FulfillmentMethod, order.Total.StringFixed(2), order.UserID),
			notifapp.Ref{OrderID: &order.ID}); err != nil {
			return err
		}

		return s.publisher.Publish(ctx, s.topic, orderKey(order.ID), domain.OrderSubmittedEvent{
			OrderID:           order.ID,
			UserID:            order.UserID,
			FulfillmentMethod: string(order.FulfillmentMethod),
			Total:             order.Total.StringFixed(2),
			Timestamp:         time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersTotal.Inc()
		if order.Status == domain.StatusPendingConfirmation {
			s.metrics.OrdersPending.Inc()
		}
	}
	logger.Info(ctx, "Order created", "order_id", order.ID, "user_id", order.UserID, "status", order.Status)
	return order, nil
}

// SubmitPayment 买家补交支付凭证，订单进入待审核
func (s *CommandService) SubmitPayment(ctx context.Context, orderID uint, userID string, cmd *SubmitPaymentCommand) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errs.New(errs.CodeForbidden, "order belongs to another user")
	}
	if err := domain.Transition(order.Status, domain.StatusPendingConfirmation); err != nil {
		return nil, err
	}

	from := order.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SetPayment(ctx, order.ID, cmd.GCashReference, cmd.PaymentProofRef); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		if err := s.repo.UpdateStatus(ctx, order.ID, from, domain.StatusPendingConfirmation); err != nil {
			return err
		}

		// 买家自己发起的变更不通知买家，改为提醒管理员审核
		if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypePaymentPending),
			"Payment awaiting review",
			fmt.Sprintf("Order #%d: GCash ref %s", order.ID, cmd.GCashReference),
			notifapp.Ref{OrderID: &order.ID}); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, order, from, domain.StatusPendingConfirmation, "customer")
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersPending.Inc()
	}
	order.Status = domain.StatusPendingConfirmation
	order.GCashReference = cmd.GCashReference
	order.PaymentProofRef = cmd.PaymentProofRef
	logger.Info(ctx, "Payment submitted", "order_id", order.ID)
	return order, nil
}

// ConfirmPayment 店家确认支付，库存在此处一次性扣减
// 任一行库存不足时整个事务回滚，订单保持待审核
func (s *CommandService) ConfirmPayment(ctx context.Context, orderID uint) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	target := domain.ConfirmedStatus(order.FulfillmentMethod == domain.FulfillmentDelivery)
	if err := domain.Transition(order.Status, target); err != nil {
		return nil, err
	}

	from := order.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		for i := range order.Items {
			item := &order.Items[i]
			if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateStatus(ctx, order.ID, from, target); err != nil {
			return err
		}

		if err := s.notifyCustomerForStatus(ctx, order, target); err != nil {
			return err
		}
		if err := s.checkLowStock(ctx, order); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, order, from, target, "admin")
	})
	if err != nil {
		if errs.HasCode(err, errs.CodeInsufficientStock) || errs.HasCode(err, errs.CodeConcurrentModification) {
			if s.metrics != nil {
				s.metrics.StockConflicts.Inc()
			}
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersPending.Dec()
	}
	order.Status = target
	logger.Info(ctx, "Payment confirmed", "order_id", order.ID, "status", target)
	return order, nil
}

// Reject 店家拒绝支付
func (s *CommandService) Reject(ctx context.Context, orderID uint, reason string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := domain.Transition(order.Status, domain.StatusRejected); err != nil {
		return nil, err
	}

	from := order.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, order.ID, from, domain.StatusRejected); err != nil {
			return err
		}

		message := fmt.Sprintf("Your payment for order #%d was not accepted.", order.ID)
		if reason != "" {
			message = fmt.Sprintf("%s Reason: %s", message, reason)
		}
		if err := s.notifier.NotifyCustomer(ctx, order.UserID, string(notifdomain.TypePaymentRejected),
			"Payment rejected", message, notifapp.Ref{OrderID: &order.ID}); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, order, from, domain.StatusRejected, "admin")
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersPending.Dec()
	}
	order.Status = domain.StatusRejected
	logger.Info(ctx, "Order rejected", "order_id", order.ID)
	return order, nil
}

// Complete 订单完成
// 店家标记完成时通知买家；买家确认收货时改为通知管理员
func (s *CommandService) Complete(ctx context.Context, orderID uint, actorUserID string, staff bool) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !staff && order.UserID != actorUserID {
		return nil, errs.New(errs.CodeForbidden, "order belongs to another user")
	}
	if err := domain.Transition(order.Status, domain.StatusCompleted); err != nil {
		return nil, err
	}

	from := order.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, order.ID, from, domain.StatusCompleted); err != nil {
			return err
		}

		ref := notifapp.Ref{OrderID: &order.ID}
		if staff {
			if err := s.notifier.NotifyCustomer(ctx, order.UserID, string(notifdomain.TypeOrderCompleted),
				"Order completed",
				fmt.Sprintf("Order #%d is complete. Thank you!", order.ID), ref); err != nil {
				return err
			}
		} else {
			if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypeOrderCompleted),
				"Order completed by customer",
				fmt.Sprintf("Order #%d was confirmed received by %s", order.ID, order.UserID), ref); err != nil {
				return err
			}
		}

		return s.publishStatusChanged(ctx, order, from, domain.StatusCompleted, actorLabel(staff))
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.StatusCompleted
	logger.Info(ctx, "Order completed", "order_id", order.ID, "by_staff", staff)
	return order, nil
}

// Cancel 取消订单
// 已扣减库存的订单取消时归还库存
func (s *CommandService) Cancel(ctx context.Context, orderID uint, actorUserID string, staff bool) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !staff && order.UserID != actorUserID {
		return nil, errs.New(errs.CodeForbidden, "order belongs to another user")
	}
	if err := domain.Transition(order.Status, domain.StatusCancelled); err != nil {
		return nil, err
	}

	from := order.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, order.ID, from, domain.StatusCancelled); err != nil {
			return err
		}

		if domain.StockDecrementedAt(from) {
			for i := range order.Items {
				item := &order.Items[i]
				if err := s.products.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		ref := notifapp.Ref{OrderID: &order.ID}
		if staff {
			if err := s.notifier.NotifyCustomer(ctx, order.UserID, string(notifdomain.TypeOrderCancelled),
				"Order cancelled",
				fmt.Sprintf("Order #%d was cancelled by the store.", order.ID), ref); err != nil {
				return err
			}
		} else {
			if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypeOrderCancelled),
				"Order cancelled by customer",
				fmt.Sprintf("Order #%d was cancelled by %s", order.ID, order.UserID), ref); err != nil {
				return err
			}
		}

		return s.publishStatusChanged(ctx, order, from, domain.StatusCancelled, actorLabel(staff))
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && from == domain.StatusPendingConfirmation {
		s.metrics.OrdersPending.Dec()
	}
	order.Status = domain.StatusCancelled
	logger.Info(ctx, "Order cancelled", "order_id", order.ID, "by_staff", staff)
	return order, nil
}

// UpdateStatus 店家手工修改状态，仍受状态机约束
// 指向确认态的变更走 ConfirmPayment，保证扣库存只有一个入口
func (s *CommandService) UpdateStatus(ctx context.Context, orderID uint, target domain.Status) (*domain.Order, error) {
	if !target.Valid() {
		return nil, errs.Newf(errs.CodeValidationFailure, "unknown status: %s", target)
	}

	switch target {
	case domain.StatusReadyForPickup, domain.StatusOutForDelivery:
		order, err := s.repo.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		expected := domain.ConfirmedStatus(order.FulfillmentMethod == domain.FulfillmentDelivery)
		if target != expected {
			return nil, errs.Newf(errs.CodeValidationFailure,
				"order #%d is a %s order; confirmed status is %s", order.ID, order.FulfillmentMethod, expected)
		}
		return s.ConfirmPayment(ctx, orderID)
	case domain.StatusRejected:
		return s.Reject(ctx, orderID, "")
	case domain.StatusCompleted:
		return s.Complete(ctx, orderID, "", true)
	case domain.StatusCancelled:
		return s.Cancel(ctx, orderID, "", true)
	default:
		return nil, errs.Newf(errs.CodeInvalidTransition, "status %s cannot be set manually", target)
	}
}

// notifyCustomerForStatus 确认后的买家通知
func (s *CommandService) notifyCustomerForStatus(ctx context.Context, order *domain.Order, status domain.Status) error {
	ref := notifapp.Ref{OrderID: &order.ID}
	switch status {
	case domain.StatusReadyForPickup:
		return s.notifier.NotifyCustomer(ctx, order.UserID, string(notifdomain.TypeReadyForPickup),
			"Order ready for pickup",
			fmt.Sprintf("Order #%d is ready for pickup.", order.ID), ref)
	case domain.StatusOutForDelivery:
		return s.notifier.NotifyCustomer(ctx, order.UserID, string(notifdomain.TypeOutForDelivery),
			"Order out for delivery",
			fmt.Sprintf("Order #%d is on its way to %s.", order.ID, order.DeliveryAddress), ref)
	}
	return nil
}

// checkLowStock 扣减后检查各商品库存，低于阈值时提醒管理员补货
func (s *CommandService) checkLowStock(ctx context.Context, order *domain.Order) error {
	for i := range order.Items {
		item := &order.Items[i]
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product.Stock <= s.pricing.LowStockThreshold {
			if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypeLowStock),
				"Low stock",
				fmt.Sprintf("%q has %d pieces left", product.Name, product.Stock),
				notifapp.Ref{}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *CommandService) publishStatusChanged(ctx context.Context, order *domain.Order, from, to domain.Status, actor string) error {
	return s.publisher.Publish(ctx, s.topic, orderKey(order.ID), domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		From:      string(from),
		To:        string(to),
		Actor:     actor,
		Timestamp: time.Now(),
	})
}

func orderKey(id uint) string {
	return fmt.Sprintf("order-%d", id)
}

func actorLabel(staff bool) string {
	if staff {
		return "admin"
	}
	return "customer"
}
