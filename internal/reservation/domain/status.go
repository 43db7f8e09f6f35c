package domain

import "github.com/wyfcoding/storefront/pkg/errs"

// Status 预约状态
type Status string

const (
	// StatusPending 已提交，等待店家确认档期
	StatusPending Status = "pending"
	// StatusPendingPayment 店家已确认，等待买家支付定金
	StatusPendingPayment Status = "pending_payment"
	// StatusConfirmed 定金已提交，预约生效
	StatusConfirmed Status = "confirmed"
	// StatusCompleted 已完成
	StatusCompleted Status = "completed"
	// StatusRejected 店家拒绝
	StatusRejected Status = "rejected"
	// StatusCancelled 已取消
	StatusCancelled Status = "cancelled"
)

// allowedTransitions 预约状态机的合法边
var allowedTransitions = map[Status][]Status{
	StatusPending:        {StatusPendingPayment, StatusRejected, StatusCancelled},
	StatusPendingPayment: {StatusConfirmed, StatusRejected, StatusCancelled},
	StatusConfirmed:      {StatusCompleted},
}

// Valid 判断状态值是否合法
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPendingPayment, StatusConfirmed,
		StatusCompleted, StatusRejected, StatusCancelled:
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
	return errs.Newf(errs.CodeInvalidTransition, "cannot transition reservation from %s to %s", current, next)
}
