package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRecalculate(t *testing.T) {
	order := &Order{
		ShippingFee: dec("50.00"),
		Items: []OrderItem{
			{ProductID: 1, UnitPrice: dec("120.00"), Quantity: 3},
			{ProductID: 2, UnitPrice: dec("35.50"), Quantity: 2},
		},
	}

	order.Recalculate()

	if !order.Subtotal.Equal(dec("431.00")) {
		t.Errorf("subtotal = %s, want 431.00", order.Subtotal)
	}
	if !order.Total.Equal(dec("481.00")) {
		t.Errorf("total = %s, want 481.00", order.Total)
	}
	if !order.Items[0].LineTotal.Equal(dec("360.00")) {
		t.Errorf("line total = %s, want 360.00", order.Items[0].LineTotal)
	}

	// 重算是幂等的，保存钩子可以多次触发
	order.Recalculate()
	if !order.Subtotal.Equal(dec("431.00")) || !order.Total.Equal(dec("481.00")) {
		t.Errorf("recalculate is not idempotent: subtotal=%s total=%s", order.Subtotal, order.Total)
	}
}

func TestRecalculateOverwritesStaleAmounts(t *testing.T) {
	order := &Order{
		Subtotal: dec("999.99"),
		Total:    dec("999.99"),
		Items: []OrderItem{
			{ProductID: 1, UnitPrice: dec("10.00"), Quantity: 1, LineTotal: dec("777.77")},
		},
	}

	order.Recalculate()

	if !order.Subtotal.Equal(dec("10.00")) {
		t.Errorf("stale subtotal survived: %s", order.Subtotal)
	}
	if !order.Items[0].LineTotal.Equal(dec("10.00")) {
		t.Errorf("stale line total survived: %s", order.Items[0].LineTotal)
	}
}

func TestTotalQuantity(t *testing.T) {
	order := &Order{
		Items: []OrderItem{
			{Quantity: 3},
			{Quantity: 7},
		},
	}
	if got := order.TotalQuantity(); got != 10 {
		t.Errorf("total quantity = %d, want 10", got)
	}
}

func TestHasPaymentProof(t *testing.T) {
	order := &Order{}
	if order.HasPaymentProof() {
		t.Error("empty order should have no payment proof")
	}
	order.GCashReference = "REF-123"
	if order.HasPaymentProof() {
		t.Error("reference alone is not proof")
	}
	order.PaymentProofRef = "proofs/p.jpg"
	if !order.HasPaymentProof() {
		t.Error("reference + image should count as proof")
	}
}
