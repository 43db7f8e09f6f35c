package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
	notifdomain "github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/internal/reservation/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
	"github.com/wyfcoding/storefront/pkg/utils"
)

// CommandService 预约写操作服务
// 状态变更与其通知、领域事件在同一数据库事务内提交
type CommandService struct {
	repo      domain.Repository
	carts     domain.CartRepository
	products  ProductReader
	notifier  Notifier
	tx        TxRunner
	publisher domain.EventPublisher
	topic     string
	metrics   *metrics.Metrics
	ids       *utils.SnowflakeID
}

// NewCommandService 创建预约写操作服务
func NewCommandService(
	repo domain.Repository,
	carts domain.CartRepository,
	products ProductReader,
	notifier Notifier,
	tx TxRunner,
	publisher domain.EventPublisher,
	topic string,
	m *metrics.Metrics,
) *CommandService {
	return &CommandService{
		repo:      repo,
		carts:     carts,
		products:  products,
		notifier:  notifier,
		tx:        tx,
		publisher: publisher,
		topic:     topic,
		metrics:   m,
		ids:       utils.NewSnowflakeID(2),
	}
}

// Submit 从预约购物车提交预约
// 每行的备货提前期在事务开启前重新校验，购物车在同一事务内清空
func (s *CommandService) Submit(ctx context.Context, cmd *SubmitCommand) (*domain.Reservation, error) {
	if cmd.ContactNumber == "" {
		return nil, errs.New(errs.CodeValidationFailure, "contact number is required")
	}
	if (cmd.GCashReference == "") != (cmd.PaymentProofRef == "") {
		return nil, errs.New(errs.CodeValidationFailure, "gcash reference and payment proof must be submitted together")
	}

	cart, err := s.carts.GetOrCreate(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, errs.New(errs.CodeValidationFailure, "reservation cart is empty")
	}

	now := time.Now()
	items := make([]domain.ReservationItem, 0, len(cart.Items))
	for i := range cart.Items {
		line := &cart.Items[i]
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.Reservable() {
			return nil, errs.Newf(errs.CodeValidationFailure, "product %q is no longer available for reservation", product.Name)
		}
		if err := domain.ValidateLeadTime(product.Name, product.PreparationDays, line.ReservationDate, now); err != nil {
			return nil, err
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, domain.ReservationItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			UnitPrice:       product.Price,
			Quantity:        line.Quantity,
			ReservationDate: line.ReservationDate,
			ReservationTime: line.ReservationTime,
			DownpaymentDue:  product.DownpaymentFor(lineTotal),
		})
	}

	reservation := &domain.Reservation{
		ReservationNo:   fmt.Sprintf("RSV-%d", s.ids.Generate()),
		UserID:          cmd.UserID,
		Status:          domain.StatusPending,
		ContactNumber:   cmd.ContactNumber,
		Notes:           cmd.Notes,
		GCashReference:  cmd.GCashReference,
		PaymentProofRef: cmd.PaymentProofRef,
		Items:           items,
	}
	reservation.Recalculate()
	if reservation.HasPaymentProof() {
		// 提交时已带定金凭证的预约直接进入待支付确认
		reservation.Status = domain.StatusPendingPayment
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, reservation); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		if err := s.carts.Clear(ctx, cart.ID); err != nil {
			return fmt.Errorf("failed to clear reservation cart: %w", err)
		}

		// 新预约只通知管理员
		if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypeReservationSubmitted),
			"New reservation received",
			fmt.Sprintf("Reservation #%d (%s total, %s downpayment) from %s",
				reservation.ID, reservation.Total.StringFixed(2), reservation.Downpayment.StringFixed(2), reservation.UserID),
			notifapp.Ref{ReservationID: &reservation.ID}); err != nil {
			return err
		}

		return s.publisher.Publish(ctx, s.topic, reservationKey(reservation.ID), domain.ReservationSubmittedEvent{
			ReservationID: reservation.ID,
			UserID:        reservation.UserID,
			Total:         reservation.Total.StringFixed(2),
			Downpayment:   reservation.Downpayment.StringFixed(2),
			Timestamp:     time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReservationsTotal.Inc()
	}
	logger.Info(ctx, "Reservation created", "reservation_id", reservation.ID, "user_id", reservation.UserID, "status", reservation.Status)
	return reservation, nil
}

// Confirm 店家确认档期，预约进入待付定金
func (s *CommandService) Confirm(ctx context.Context, reservationID uint) (*domain.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := domain.Transition(reservation.Status, domain.StatusPendingPayment); err != nil {
		return nil, err
	}

	from := reservation.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, reservation.ID, from, domain.StatusPendingPayment); err != nil {
			return err
		}

		if err := s.notifier.NotifyCustomer(ctx, reservation.UserID, string(notifdomain.TypeReservationConfirmed),
			"Reservation confirmed",
			fmt.Sprintf("Reservation #%d is confirmed. Please pay the %s downpayment to proceed.",
				reservation.ID, reservation.Downpayment.StringFixed(2)),
			notifapp.Ref{ReservationID: &reservation.ID}); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, reservation, from, domain.StatusPendingPayment, "admin")
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.StatusPendingPayment
	logger.Info(ctx, "Reservation confirmed", "reservation_id", reservation.ID)
	return reservation, nil
}

// SubmitPayment 买家提交定金凭证，预约生效
func (s *CommandService) SubmitPayment(ctx context.Context, reservationID uint, userID string, cmd *SubmitPaymentCommand) (*domain.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.UserID != userID {
		return nil, errs.New(errs.CodeForbidden, "reservation belongs to another user")
	}
	if err := domain.Transition(reservation.Status, domain.StatusConfirmed); err != nil {
		return nil, err
	}

	from := reservation.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.SetPayment(ctx, reservation.ID, cmd.GCashReference, cmd.PaymentProofRef); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		if err := s.repo.UpdateStatus(ctx, reservation.ID, from, domain.StatusConfirmed); err != nil {
			return err
		}

		// 买家自己发起的变更不通知买家，改为提醒管理员核对定金
		if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypePaymentPending),
			"Downpayment awaiting review",
			fmt.Sprintf("Reservation #%d: GCash ref %s", reservation.ID, cmd.GCashReference),
			notifapp.Ref{ReservationID: &reservation.ID}); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, reservation, from, domain.StatusConfirmed, "customer")
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.StatusConfirmed
	reservation.GCashReference = cmd.GCashReference
	reservation.PaymentProofRef = cmd.PaymentProofRef
	logger.Info(ctx, "Reservation payment submitted", "reservation_id", reservation.ID)
	return reservation, nil
}

// AcceptPayment 店家核对提交时附带的定金凭证，预约生效
// 仅适用于创建时已带凭证、停留在待付定金的预约
func (s *CommandService) AcceptPayment(ctx context.Context, reservationID uint) (*domain.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !reservation.HasPaymentProof() {
		return nil, errs.Newf(errs.CodeValidationFailure, "reservation #%d has no payment proof to accept", reservation.ID)
	}
	if err := domain.Transition(reservation.Status, domain.StatusConfirmed); err != nil {
		return nil, err
	}

	from := reservation.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, reservation.ID, from, domain.StatusConfirmed); err != nil {
			return err
		}

		if err := s.notifier.NotifyCustomer(ctx, reservation.UserID, string(notifdomain.TypeReservationConfirmed),
			"Downpayment received",
			fmt.Sprintf("Reservation #%d is confirmed. See you on the scheduled date!", reservation.ID),
			notifapp.Ref{ReservationID: &reservation.ID}); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, reservation, from, domain.StatusConfirmed, "admin")
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.StatusConfirmed
	logger.Info(ctx, "Reservation payment accepted", "reservation_id", reservation.ID)
	return reservation, nil
}

// Reject 店家拒绝预约
func (s *CommandService) Reject(ctx context.Context, reservationID uint, note string) (*domain.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := domain.Transition(reservation.Status, domain.StatusRejected); err != nil {
		return nil, err
	}

	from := reservation.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, reservation.ID, from, domain.StatusRejected); err != nil {
			return err
		}
		if note != "" {
			if err := s.repo.SetDecisionNote(ctx, reservation.ID, note); err != nil {
				return err
			}
		}

		message := fmt.Sprintf("Reservation #%d was declined.", reservation.ID)
		if note != "" {
			message = fmt.Sprintf("%s Reason: %s", message, note)
		}
		if err := s.notifier.NotifyCustomer(ctx, reservation.UserID, string(notifdomain.TypeReservationRejected),
			"Reservation declined", message,
			notifapp.Ref{ReservationID: &reservation.ID}); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, reservation, from, domain.StatusRejected, "admin")
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.StatusRejected
	reservation.DecisionNote = note
	logger.Info(ctx, "Reservation rejected", "reservation_id", reservation.ID)
	return reservation, nil
}

// Complete 店家标记预约完成
func (s *CommandService) Complete(ctx context.Context, reservationID uint) (*domain.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if err := domain.Transition(reservation.Status, domain.StatusCompleted); err != nil {
		return nil, err
	}

	from := reservation.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, reservation.ID, from, domain.StatusCompleted); err != nil {
			return err
		}

		if err := s.notifier.NotifyCustomer(ctx, reservation.UserID, string(notifdomain.TypeReservationCompleted),
			"Reservation completed",
			fmt.Sprintf("Reservation #%d is complete. Thank you!", reservation.ID),
			notifapp.Ref{ReservationID: &reservation.ID}); err != nil {
			return err
		}

		return s.publishStatusChanged(ctx, reservation, from, domain.StatusCompleted, "admin")
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.StatusCompleted
	logger.Info(ctx, "Reservation completed", "reservation_id", reservation.ID)
	return reservation, nil
}

// Cancel 取消预约
func (s *CommandService) Cancel(ctx context.Context, reservationID uint, actorUserID string, staff bool) (*domain.Reservation, error) {
	reservation, err := s.repo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !staff && reservation.UserID != actorUserID {
		return nil, errs.New(errs.CodeForbidden, "reservation belongs to another user")
	}
	if err := domain.Transition(reservation.Status, domain.StatusCancelled); err != nil {
		return nil, err
	}

	from := reservation.Status
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, reservation.ID, from, domain.StatusCancelled); err != nil {
			return err
		}

		ref := notifapp.Ref{ReservationID: &reservation.ID}
		if staff {
			if err := s.notifier.NotifyCustomer(ctx, reservation.UserID, string(notifdomain.TypeReservationCancelled),
				"Reservation cancelled",
				fmt.Sprintf("Reservation #%d was cancelled by the store.", reservation.ID), ref); err != nil {
				return err
			}
		} else {
			if err := s.notifier.NotifyAdmin(ctx, string(notifdomain.TypeReservationCancelled),
				"Reservation cancelled by customer",
				fmt.Sprintf("Reservation #%d was cancelled by %s", reservation.ID, reservation.UserID), ref); err != nil {
				return err
			}
		}

		return s.publishStatusChanged(ctx, reservation, from, domain.StatusCancelled, actorLabel(staff))
	})
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.StatusCancelled
	logger.Info(ctx, "Reservation cancelled", "reservation_id", reservation.ID, "by_staff", staff)
	return reservation, nil
}

// UpdateStatus 店家手工修改状态，仍受状态机约束
func (s *CommandService) UpdateStatus(ctx context.Context, reservationID uint, target domain.Status) (*domain.Reservation, error) {
	if !target.Valid() {
		return nil, errs.Newf(errs.CodeValidationFailure, "unknown status: %s", target)
	}

	switch target {
	case domain.StatusPendingPayment:
		return s.Confirm(ctx, reservationID)
	case domain.StatusConfirmed:
		return s.AcceptPayment(ctx, reservationID)
	case domain.StatusRejected:
		return s.Reject(ctx, reservationID, "")
	case domain.StatusCompleted:
		return s.Complete(ctx, reservationID)
	case domain.StatusCancelled:
		return s.Cancel(ctx, reservationID, "", true)
	default:
		return nil, errs.Newf(errs.CodeInvalidTransition, "status %s cannot be set manually", target)
	}
}

func (s *CommandService) publishStatusChanged(ctx context.Context, reservation *domain.Reservation, from, to domain.Status, actor string) error {
	return s.publisher.Publish(ctx, s.topic, reservationKey(reservation.ID), domain.ReservationStatusChangedEvent{
		ReservationID: reservation.ID,
		UserID:        reservation.UserID,
		From:          string(from),
		To:            string(to),
		Actor:         actor,
		Timestamp:     time.Now(),
	})
}

func reservationKey(id uint) string {
	return fmt.Sprintf("reservation-%d", id)
}

func actorLabel(staff bool) string {
	if staff {
		return "admin"
	}
	return "customer"
}
