package domain

import (
	"testing"

	"github.com/wyfcoding/storefront/pkg/errs"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{"pending to pending_payment", StatusPending, StatusPendingPayment, false},
		{"pending to rejected", StatusPending, StatusRejected, false},
		{"pending to cancelled", StatusPending, StatusCancelled, false},
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending_payment to confirmed", StatusPendingPayment, StatusConfirmed, false},
		{"pending_payment to rejected", StatusPendingPayment, StatusRejected, false},
		{"pending_payment to cancelled", StatusPendingPayment, StatusCancelled, false},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, false},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, true},
		{"completed is terminal", StatusCompleted, StatusPending, true},
		{"rejected is terminal", StatusRejected, StatusPendingPayment, true},
		{"cancelled is terminal", StatusCancelled, StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Transition(tt.from, tt.to)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Transition(%s, %s) expected error, got nil", tt.from, tt.to)
				}
				if !errs.HasCode(err, errs.CodeInvalidTransition) {
					t.Errorf("expected INVALID_TRANSITION, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Transition(%s, %s) unexpected error: %v", tt.from, tt.to, err)
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	terminals := []Status{StatusCompleted, StatusRejected, StatusCancelled}
	for _, s := range terminals {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	live := []Status{StatusPending, StatusPendingPayment, StatusConfirmed}
	for _, s := range live {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
