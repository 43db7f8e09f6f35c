package domain

import "github.com/wyfcoding/storefront/pkg/errs"

// Status 订单状态
type Status string

const (
	// StatusPending 已提交，尚未上传支付凭证
	StatusPending Status = "pending"
	// StatusPendingConfirmation 已上传支付凭证，等待店家审核
	StatusPendingConfirmation Status = "pending_confirmation"
	// StatusReadyForPickup 已确认，备货完毕待自提
	StatusReadyForPickup Status = "ready_for_pickup"
	// StatusOutForDelivery 已确认，配送中
	StatusOutForDelivery Status = "out_for_delivery"
	// StatusCompleted 已完成
	StatusCompleted Status = "completed"
	// StatusRejected 支付审核未通过
	StatusRejected Status = "rejected"
	// StatusCancelled 已取消
	StatusCancelled Status = "cancelled"
)

// allowedTransitions 订单状态机的合法边
var allowedTransitions = map[Status][]Status{
	StatusPending:             {StatusPendingConfirmation, StatusCancelled},
	StatusPendingConfirmation: {StatusReadyForPickup, StatusOutForDelivery, StatusRejected, StatusCancelled},
	StatusReadyForPickup:      {StatusCompleted},
	StatusOutForDelivery:      {StatusCompleted},
}

// Valid 判断状态值是否合法
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingConfirmation, StatusReadyForPickup,
		StatusOutForDelivery, StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal 是否为终态
func (s Status) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Transition 校验状态变更是否合法
func Transition(current, next Status) error {
	for _, allowed := range allowedTransitions[current] {
		if allowed == next {
			return nil
		}
	}
	return errs.Newf(errs.CodeInvalidTransition, "cannot transition order from %s to %s", current, next)
}

// ConfirmedStatus 确认支付后的目标状态，取决于履约方式
func ConfirmedStatus(delivery bool) Status {
	if delivery {
		return StatusOutForDelivery
	}
	return StatusReadyForPickup
}

// StockDecrementedAt 判断处于该状态的订单是否已扣减过库存
// 库存仅在确认支付时扣减，确认之后的状态都持有库存
func StockDecrementedAt(s Status) bool {
	switch s {
	case StatusReadyForPickup, StatusOutForDelivery, StatusCompleted:
		return true
	}
	return false
}
