package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeOrderRepo struct {
	orders map[uint]*domain.Order
	nextID uint
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint]*domain.Order), nextID: 1}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	order.ID = r.nextID
	r.nextID++
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uint) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, errs.Newf(errs.CodeNotFound, "order %d not found", id)
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (r *fakeOrderRepo) ListForUser(_ context.Context, _ string, _, _ int) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) List(_ context.Context, _ domain.Status, _, _ int) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uint, from, to domain.Status) error {
	order, ok := r.orders[id]
	if !ok {
		return errs.Newf(errs.CodeNotFound, "order %d not found", id)
	}
	if order.Status != from {
		return errs.Newf(errs.CodeConcurrentModification, "order %d is no longer in status %s", id, from)
	}
	order.Status = to
	return nil
}

func (r *fakeOrderRepo) SetPayment(_ context.Context, id uint, gcashReference, paymentProofRef string) error {
	order := r.orders[id]
	order.GCashReference = gcashReference
	order.PaymentProofRef = paymentProofRef
	return nil
}

type fakeProducts struct {
	products map[uint]*catalogdomain.Product
	restored map[uint]int
}

func newFakeProducts(products ...*catalogdomain.Product) *fakeProducts {
	f := &fakeProducts{products: make(map[uint]*catalogdomain.Product), restored: make(map[uint]int)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeProducts) GetByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, errs.Newf(errs.CodeNotFound, "product %d not found", id)
	}
	return p, nil
}

func (f *fakeProducts) DecrementStock(_ context.Context, id uint, quantity int) error {
	p := f.products[id]
	if p.Stock < quantity {
		return errs.Newf(errs.CodeInsufficientStock, "insufficient stock for product %d", id)
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeProducts) RestoreStock(_ context.Context, id uint, quantity int) error {
	f.products[id].Stock += quantity
	f.restored[id] += quantity
	return nil
}

type note struct {
	userID  string
	typ     string
	title   string
	message string
}

type fakeNotifier struct {
	admin    []note
	customer []note
}

func (f *fakeNotifier) NotifyAdmin(_ context.Context, typ, title, message string, _ notifapp.Ref) error {
	f.admin = append(f.admin, note{typ: typ, title: title, message: message})
	return nil
}

func (f *fakeNotifier) NotifyCustomer(_ context.Context, userID, typ, title, message string, _ notifapp.Ref) error {
	f.customer = append(f.customer, note{userID: userID, typ: typ, title: title, message: message})
	return nil
}

type fakePublisher struct {
	events []any
}

func (f *fakePublisher) Publish(_ context.Context, _ string, _ string, event any) error {
	f.events = append(f.events, event)
	return nil
}

func testProduct(id uint, name, price string, stock int) *catalogdomain.Product {
	p := &catalogdomain.Product{
		Name:             name,
		Price:            mustDec(price),
		Stock:            stock,
		IsAvailable:      true,
		Categories:       catalogdomain.CategorySet{catalogdomain.CategoryOrderNow},
		MinOrderQuantity: 1,
	}
	p.ID = id
	return p
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testPricing() Pricing {
	return Pricing{
		FreeDeliveryQuantity: 20,
		ShippingFee:          mustDec("50.00"),
		DownpaymentPercent:   decimal.NewFromInt(50),
		LowStockThreshold:    5,
	}
}

func newTestService(repo *fakeOrderRepo, products *fakeProducts, notifier *fakeNotifier, publisher *fakePublisher) *CommandService {
	return NewCommandService(repo, products, notifier, fakeTx{}, publisher, "storefront.events", testPricing(), nil)
}

func TestCheckoutNotifiesAdminOnly(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "ube kalamay", "120.00", 50))
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(repo, products, notifier, publisher)

	order, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 3}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "09171234567",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if order.Status != domain.StatusPending {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusPending)
	}
	if len(notifier.admin) != 1 {
		t.Fatalf("admin notifications = %d, want 1", len(notifier.admin))
	}
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %d, want 0", len(notifier.customer))
	}
	if len(publisher.events) != 1 {
		t.Errorf("published events = %d, want 1", len(publisher.events))
	}
	// 库存在结账时不扣减
	if products.products[1].Stock != 50 {
		t.Errorf("stock = %d, checkout must not touch stock", products.products[1].Stock)
	}
}

func TestCheckoutWithProofStartsPendingConfirmation(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "ube kalamay", "120.00", 50))
	svc := newTestService(repo, products, &fakeNotifier{}, &fakePublisher{})

	order, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "09171234567",
		GCashReference:    "GC-1",
		PaymentProofRef:   "proofs/gc1.jpg",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if order.Status != domain.StatusPendingConfirmation {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusPendingConfirmation)
	}
}

func TestCheckoutDeliveryPricing(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "sapin-sapin", "100.00", 100))
	svc := newTestService(repo, products, &fakeNotifier{}, &fakePublisher{})

	// 件数未达免运费门槛：运费 50，定金为 (小计+运费) 的一半
	order, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 5}},
		FulfillmentMethod: "delivery",
		DeliveryAddress:   "123 Mabini St",
		ContactNumber:     "09171234567",
		GCashReference:    "GC-10",
		PaymentProofRef:   "proofs/gc10.jpg",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !order.ShippingFee.Equal(mustDec("50.00")) {
		t.Errorf("shipping fee = %s, want 50.00", order.ShippingFee)
	}
	if !order.Total.Equal(mustDec("550.00")) {
		t.Errorf("total = %s, want 550.00", order.Total)
	}
	if !order.Downpayment.Equal(mustDec("275.00")) {
		t.Errorf("downpayment = %s, want 275.00", order.Downpayment)
	}

	// 达到免运费门槛
	order, err = svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 20}},
		FulfillmentMethod: "delivery",
		DeliveryAddress:   "123 Mabini St",
		ContactNumber:     "09171234567",
		GCashReference:    "GC-11",
		PaymentProofRef:   "proofs/gc11.jpg",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !order.ShippingFee.IsZero() {
		t.Errorf("shipping fee = %s, want 0", order.ShippingFee)
	}
}

func TestCheckoutValidation(t *testing.T) {
	repo := newFakeOrderRepo()
	product := testProduct(1, "bibingka", "80.00", 10)
	product.MinOrderQuantity = 4
	products := newFakeProducts(product)
	svc := newTestService(repo, products, &fakeNotifier{}, &fakePublisher{})

	tests := []struct {
		name string
		cmd  CheckoutCommand
		code errs.Code
	}{
		{
			"empty lines",
			CheckoutCommand{UserID: "alice", FulfillmentMethod: "pickup", ContactNumber: "0917"},
			errs.CodeValidationFailure,
		},
		{
			"delivery without address",
			CheckoutCommand{UserID: "alice", Lines: []CheckoutLine{{ProductID: 1, Quantity: 4}}, FulfillmentMethod: "delivery", ContactNumber: "0917"},
			errs.CodeValidationFailure,
		},
		{
			"below minimum order quantity",
			CheckoutCommand{UserID: "alice", Lines: []CheckoutLine{{ProductID: 1, Quantity: 2}}, FulfillmentMethod: "pickup", ContactNumber: "0917"},
			errs.CodeValidationFailure,
		},
		{
			"more than stock",
			CheckoutCommand{UserID: "alice", Lines: []CheckoutLine{{ProductID: 1, Quantity: 11}}, FulfillmentMethod: "pickup", ContactNumber: "0917"},
			errs.CodeInsufficientStock,
		},
		{
			"proof without reference",
			CheckoutCommand{UserID: "alice", Lines: []CheckoutLine{{ProductID: 1, Quantity: 4}}, FulfillmentMethod: "pickup", ContactNumber: "0917", PaymentProofRef: "proofs/x.jpg"},
			errs.CodeValidationFailure,
		},
		{
			"delivery without payment proof",
			CheckoutCommand{UserID: "alice", Lines: []CheckoutLine{{ProductID: 1, Quantity: 4}}, FulfillmentMethod: "delivery", DeliveryAddress: "123 Mabini St", ContactNumber: "0917"},
			errs.CodeValidationFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), &tt.cmd)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errs.HasCode(err, tt.code) {
				t.Errorf("error code = %s, want %s (%v)", errs.CodeOf(err), tt.code, err)
			}
		})
	}
}

func TestConfirmPaymentDecrementsStockAndNotifiesCustomer(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, products, notifier, &fakePublisher{})

	created, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 4}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
		GCashReference:    "GC-1",
		PaymentProofRef:   "proofs/gc1.jpg",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	notifier.admin = nil

	order, err := svc.ConfirmPayment(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if order.Status != domain.StatusReadyForPickup {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusReadyForPickup)
	}
	if products.products[1].Stock != 6 {
		t.Errorf("stock = %d, want 6", products.products[1].Stock)
	}
	if len(notifier.customer) != 1 || notifier.customer[0].typ != "ready_for_pickup" {
		t.Errorf("customer notifications = %+v, want one ready_for_pickup", notifier.customer)
	}
	// 10-4=6 仍高于阈值 5，不触发低库存通知
	if len(notifier.admin) != 0 {
		t.Errorf("admin notifications = %+v, want none", notifier.admin)
	}
}

func TestConfirmPaymentLowStockNotifiesAdmin(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 6))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, products, notifier, &fakePublisher{})

	created, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 3}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
		GCashReference:    "GC-1",
		PaymentProofRef:   "proofs/gc1.jpg",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	notifier.admin = nil

	if _, err := svc.ConfirmPayment(context.Background(), created.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	found := false
	for _, n := range notifier.admin {
		if n.typ == "low_stock" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected low_stock admin notification, got %+v", notifier.admin)
	}
}

func TestConfirmPaymentInsufficientStockFailsBeforeStatusChange(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, products, notifier, &fakePublisher{})

	created, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 4}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
		GCashReference:    "GC-1",
		PaymentProofRef:   "proofs/gc1.jpg",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// 确认前库存被其他订单消耗
	products.products[1].Stock = 2
	notifier.customer = nil

	_, err = svc.ConfirmPayment(context.Background(), created.ID)
	if !errs.HasCode(err, errs.CodeInsufficientStock) {
		t.Fatalf("error = %v, want INSUFFICIENT_STOCK", err)
	}

	stored, _ := repo.GetByID(context.Background(), created.ID)
	if stored.Status != domain.StatusPendingConfirmation {
		t.Errorf("status = %s, order must stay pending_confirmation", stored.Status)
	}
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %+v, want none on failure", notifier.customer)
	}
}

func TestConfirmPaymentInvalidFromPending(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	svc := newTestService(repo, products, &fakeNotifier{}, &fakePublisher{})

	created, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	_, err = svc.ConfirmPayment(context.Background(), created.ID)
	if !errs.HasCode(err, errs.CodeInvalidTransition) {
		t.Fatalf("error = %v, want INVALID_TRANSITION", err)
	}
}

func TestSubmitPaymentNotifiesAdmin(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, products, notifier, &fakePublisher{})

	created, err := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	notifier.admin = nil

	order, err := svc.SubmitPayment(context.Background(), created.ID, "alice", &SubmitPaymentCommand{
		GCashReference:  "GC-2",
		PaymentProofRef: "proofs/gc2.jpg",
	})
	if err != nil {
		t.Fatalf("submit payment failed: %v", err)
	}

	if order.Status != domain.StatusPendingConfirmation {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusPendingConfirmation)
	}
	// 买家自己发起的变更不通知买家
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %+v, want none", notifier.customer)
	}
	if len(notifier.admin) != 1 || notifier.admin[0].typ != "payment_pending" {
		t.Errorf("admin notifications = %+v, want one payment_pending", notifier.admin)
	}
}

func TestSubmitPaymentWrongUser(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	svc := newTestService(repo, products, &fakeNotifier{}, &fakePublisher{})

	created, _ := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
	})

	_, err := svc.SubmitPayment(context.Background(), created.ID, "mallory", &SubmitPaymentCommand{
		GCashReference:  "GC-3",
		PaymentProofRef: "proofs/gc3.jpg",
	})
	if !errs.HasCode(err, errs.CodeForbidden) {
		t.Fatalf("error = %v, want FORBIDDEN", err)
	}
}

func TestCustomerCancelNotifiesAdminOnly(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, products, notifier, &fakePublisher{})

	created, _ := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
	})
	notifier.admin = nil

	order, err := svc.Cancel(context.Background(), created.ID, "alice", false)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if order.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusCancelled)
	}
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %+v, want none for self-cancel", notifier.customer)
	}
	if len(notifier.admin) != 1 || notifier.admin[0].typ != "order_cancelled" {
		t.Errorf("admin notifications = %+v, want one order_cancelled", notifier.admin)
	}
	// 未确认的订单取消不动库存
	if products.restored[1] != 0 {
		t.Errorf("restored = %d, want 0", products.restored[1])
	}
}

func TestCustomerCompleteNotifiesAdmin(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, products, notifier, &fakePublisher{})

	created, _ := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
		GCashReference:    "GC-1",
		PaymentProofRef:   "proofs/gc1.jpg",
	})
	if _, err := svc.ConfirmPayment(context.Background(), created.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	notifier.admin = nil
	notifier.customer = nil

	order, err := svc.Complete(context.Background(), created.ID, "alice", false)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	if order.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusCompleted)
	}
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %+v, want none for self-complete", notifier.customer)
	}
	if len(notifier.admin) != 1 {
		t.Errorf("admin notifications = %+v, want 1", notifier.admin)
	}
}

func TestRejectNotifiesCustomerWithReason(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	notifier := &fakeNotifier{}
	svc := newTestService(repo, products, notifier, &fakePublisher{})

	created, _ := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
		GCashReference:    "GC-1",
		PaymentProofRef:   "proofs/gc1.jpg",
	})

	order, err := svc.Reject(context.Background(), created.ID, "reference number does not match")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if order.Status != domain.StatusRejected {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusRejected)
	}
	if len(notifier.customer) != 1 || notifier.customer[0].typ != "payment_rejected" {
		t.Fatalf("customer notifications = %+v, want one payment_rejected", notifier.customer)
	}
}

func TestUpdateStatusRejectsMismatchedConfirmTarget(t *testing.T) {
	repo := newFakeOrderRepo()
	products := newFakeProducts(testProduct(1, "leche flan", "150.00", 10))
	svc := newTestService(repo, products, &fakeNotifier{}, &fakePublisher{})

	created, _ := svc.Checkout(context.Background(), &CheckoutCommand{
		UserID:            "alice",
		Lines:             []CheckoutLine{{ProductID: 1, Quantity: 1}},
		FulfillmentMethod: "pickup",
		ContactNumber:     "0917",
		GCashReference:    "GC-1",
		PaymentProofRef:   "proofs/gc1.jpg",
	})

	// 自提订单不能被手工标记为配送中
	_, err := svc.UpdateStatus(context.Background(), created.ID, domain.StatusOutForDelivery)
	if !errs.HasCode(err, errs.CodeValidationFailure) {
		t.Fatalf("error = %v, want VALIDATION_FAILURE", err)
	}

	order, err := svc.UpdateStatus(context.Background(), created.ID, domain.StatusReadyForPickup)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if order.Status != domain.StatusReadyForPickup {
		t.Errorf("status = %s, want %s", order.Status, domain.StatusReadyForPickup)
	}
}
