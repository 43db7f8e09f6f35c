package domain

import "time"

// ReservationSubmittedEvent 预约提交事件
type ReservationSubmittedEvent struct {
	ReservationID uint      `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	Total         string    `json:"total"`
	Downpayment   string    `json:"downpayment"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventName 事件类型名
func (ReservationSubmittedEvent) EventName() string { return "ReservationSubmittedEvent" }

// ReservationStatusChangedEvent 预约状态变更事件
type ReservationStatusChangedEvent struct {
	ReservationID uint      `json:"reservation_id"`
	UserID        string    `json:"user_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Actor         string    `json:"actor"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventName 事件类型名
func (ReservationStatusChangedEvent) EventName() string { return "ReservationStatusChangedEvent" }
