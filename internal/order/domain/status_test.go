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
		{"pending to pending_confirmation", StatusPending, StatusPendingConfirmation, false},
		{"pending to cancelled", StatusPending, StatusCancelled, false},
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending_confirmation to ready_for_pickup", StatusPendingConfirmation, StatusReadyForPickup, false},
		{"pending_confirmation to out_for_delivery", StatusPendingConfirmation, StatusOutForDelivery, false},
		{"pending_confirmation to rejected", StatusPendingConfirmation, StatusRejected, false},
		{"pending_confirmation to cancelled", StatusPendingConfirmation, StatusCancelled, false},
		{"pending_confirmation to pending", StatusPendingConfirmation, StatusPending, true},
		{"ready_for_pickup to completed", StatusReadyForPickup, StatusCompleted, false},
		{"ready_for_pickup to cancelled", StatusReadyForPickup, StatusCancelled, true},
		{"out_for_delivery to completed", StatusOutForDelivery, StatusCompleted, false},
		{"completed is terminal", StatusCompleted, StatusCancelled, true},
		{"rejected is terminal", StatusRejected, StatusPendingConfirmation, true},
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
	live := []Status{StatusPending, StatusPendingConfirmation, StatusReadyForPickup, StatusOutForDelivery}
	for _, s := range live {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestConfirmedStatus(t *testing.T) {
	if got := ConfirmedStatus(true); got != StatusOutForDelivery {
		t.Errorf("delivery order confirmed status = %s, want %s", got, StatusOutForDelivery)
	}
	if got := ConfirmedStatus(false); got != StatusReadyForPickup {
		t.Errorf("pickup order confirmed status = %s, want %s", got, StatusReadyForPickup)
	}
}

func TestStockDecrementedAt(t *testing.T) {
	decremented := []Status{StatusReadyForPickup, StatusOutForDelivery, StatusCompleted}
	for _, s := range decremented {
		if !StockDecrementedAt(s) {
			t.Errorf("stock should be held at %s", s)
		}
	}
	notDecremented := []Status{StatusPending, StatusPendingConfirmation, StatusRejected, StatusCancelled}
	for _, s := range notDecremented {
		if StockDecrementedAt(s) {
			t.Errorf("stock should not be held at %s", s)
		}
	}
}
