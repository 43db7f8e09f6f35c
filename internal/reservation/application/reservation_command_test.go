package application

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	notifapp "github.com/wyfcoding/storefront/internal/notification/application"
	"github.com/wyfcoding/storefront/internal/reservation/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
)

type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeReservationRepo struct {
	reservations map[uint]*domain.Reservation
	nextID       uint
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[uint]*domain.Reservation), nextID: 1}
}

func (r *fakeReservationRepo) Create(_ context.Context, reservation *domain.Reservation) error {
	reservation.ID = r.nextID
	r.nextID++
	r.reservations[reservation.ID] = reservation
	return nil
}

func (r *fakeReservationRepo) GetByID(_ context.Context, id uint) (*domain.Reservation, error) {
	reservation, ok := r.reservations[id]
	if !ok {
		return nil, errs.Newf(errs.CodeNotFound, "reservation %d not found", id)
	}
	copied := *reservation
	copied.Items = append([]domain.ReservationItem(nil), reservation.Items...)
	return &copied, nil
}

func (r *fakeReservationRepo) ListForUser(_ context.Context, _ string, _, _ int) ([]*domain.Reservation, int64, error) {
	return nil, 0, nil
}

func (r *fakeReservationRepo) List(_ context.Context, _ domain.Status, _, _ int) ([]*domain.Reservation, int64, error) {
	return nil, 0, nil
}

func (r *fakeReservationRepo) UpdateStatus(_ context.Context, id uint, from, to domain.Status) error {
	reservation, ok := r.reservations[id]
	if !ok {
		return errs.Newf(errs.CodeNotFound, "reservation %d not found", id)
	}
	if reservation.Status != from {
		return errs.Newf(errs.CodeConcurrentModification, "reservation %d is no longer in status %s", id, from)
	}
	reservation.Status = to
	return nil
}

func (r *fakeReservationRepo) SetPayment(_ context.Context, id uint, gcashReference, paymentProofRef string) error {
	reservation := r.reservations[id]
	reservation.GCashReference = gcashReference
	reservation.PaymentProofRef = paymentProofRef
	return nil
}

func (r *fakeReservationRepo) SetDecisionNote(_ context.Context, id uint, note string) error {
	r.reservations[id].DecisionNote = note
	return nil
}

type fakeCartRepo struct {
	cart    *domain.Cart
	cleared bool
}

func newFakeCartRepo(userID string, items ...domain.CartItem) *fakeCartRepo {
	cart := &domain.Cart{UserID: userID, Items: items}
	cart.ID = 1
	return &fakeCartRepo{cart: cart}
}

func (f *fakeCartRepo) GetOrCreate(_ context.Context, _ string) (*domain.Cart, error) {
	return f.cart, nil
}

func (f *fakeCartRepo) UpsertItem(_ context.Context, item *domain.CartItem) error {
	for i := range f.cart.Items {
		line := &f.cart.Items[i]
		if line.ProductID == item.ProductID &&
			line.ReservationDate.Equal(item.ReservationDate) &&
			line.ReservationTime == item.ReservationTime {
			line.Quantity += item.Quantity
			return nil
		}
	}
	f.cart.Items = append(f.cart.Items, *item)
	return nil
}

func (f *fakeCartRepo) UpdateItemQuantity(_ context.Context, itemID uint, quantity int) error {
	for i := range f.cart.Items {
		if f.cart.Items[i].ID == itemID {
			f.cart.Items[i].Quantity = quantity
			return nil
		}
	}
	return errs.Newf(errs.CodeNotFound, "cart line %d not found", itemID)
}

func (f *fakeCartRepo) GetItem(_ context.Context, itemID uint) (*domain.CartItem, error) {
	for i := range f.cart.Items {
		if f.cart.Items[i].ID == itemID {
			return &f.cart.Items[i], nil
		}
	}
	return nil, errs.Newf(errs.CodeNotFound, "cart line %d not found", itemID)
}

func (f *fakeCartRepo) DeleteItem(_ context.Context, itemID uint) error {
	for i := range f.cart.Items {
		if f.cart.Items[i].ID == itemID {
			f.cart.Items = append(f.cart.Items[:i], f.cart.Items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, _ uint) error {
	f.cart.Items = nil
	f.cleared = true
	return nil
}

type fakeProducts struct {
	products map[uint]*catalogdomain.Product
}

func (f *fakeProducts) GetByID(_ context.Context, id uint) (*catalogdomain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, errs.Newf(errs.CodeNotFound, "product %d not found", id)
	}
	return p, nil
}

type note struct {
	userID string
	typ    string
}

type fakeNotifier struct {
	admin    []note
	customer []note
}

func (f *fakeNotifier) NotifyAdmin(_ context.Context, typ, _, _ string, _ notifapp.Ref) error {
	f.admin = append(f.admin, note{typ: typ})
	return nil
}

func (f *fakeNotifier) NotifyCustomer(_ context.Context, userID, typ, _, _ string, _ notifapp.Ref) error {
	f.customer = append(f.customer, note{userID: userID, typ: typ})
	return nil
}

type fakePublisher struct {
	events []any
}

func (f *fakePublisher) Publish(_ context.Context, _ string, _ string, event any) error {
	f.events = append(f.events, event)
	return nil
}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func reservableProduct(id uint, name, price string, preparationDays int, downpaymentPercent string) *catalogdomain.Product {
	p := &catalogdomain.Product{
		Name:                          name,
		Price:                         mustDec(price),
		Stock:                         100,
		IsAvailable:                   true,
		Categories:                    catalogdomain.CategorySet{catalogdomain.CategoryReservation},
		MinOrderQuantity:              1,
		PreparationDays:               preparationDays,
		ReservationDownpaymentPercent: mustDec(downpaymentPercent),
	}
	p.ID = id
	return p
}

func futureDate(days int) time.Time {
	return time.Now().AddDate(0, 0, days).Truncate(24 * time.Hour)
}

func newTestService(repo *fakeReservationRepo, carts *fakeCartRepo, products *fakeProducts, notifier *fakeNotifier, publisher *fakePublisher) *CommandService {
	return NewCommandService(repo, carts, products, notifier, fakeTx{}, publisher, "storefront.events", nil)
}

func TestSubmitFromCart(t *testing.T) {
	products := &fakeProducts{products: map[uint]*catalogdomain.Product{
		1: reservableProduct(1, "wedding cake", "2000.00", 7, "30"),
	}}
	item := domain.CartItem{CartID: 1, ProductID: 1, Quantity: 2, ReservationDate: futureDate(10), ReservationTime: "14:00"}
	item.ID = 1
	carts := newFakeCartRepo("alice", item)
	repo := newFakeReservationRepo()
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := newTestService(repo, carts, products, notifier, publisher)

	reservation, err := svc.Submit(context.Background(), &SubmitCommand{
		UserID:        "alice",
		ContactNumber: "09171234567",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if reservation.Status != domain.StatusPending {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusPending)
	}
	if !reservation.Total.Equal(mustDec("4000.00")) {
		t.Errorf("total = %s, want 4000.00", reservation.Total)
	}
	// 定金 = 4000 * 30%
	if !reservation.Downpayment.Equal(mustDec("1200.00")) {
		t.Errorf("downpayment = %s, want 1200.00", reservation.Downpayment)
	}
	if !carts.cleared {
		t.Error("cart must be cleared on submit")
	}
	if len(notifier.admin) != 1 || notifier.admin[0].typ != "reservation_submitted" {
		t.Errorf("admin notifications = %+v, want one reservation_submitted", notifier.admin)
	}
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %+v, want none", notifier.customer)
	}
	if len(publisher.events) != 1 {
		t.Errorf("published events = %d, want 1", len(publisher.events))
	}
}

func TestSubmitWithProofStartsPendingPayment(t *testing.T) {
	products := &fakeProducts{products: map[uint]*catalogdomain.Product{
		1: reservableProduct(1, "wedding cake", "2000.00", 7, "30"),
	}}
	item := domain.CartItem{CartID: 1, ProductID: 1, Quantity: 1, ReservationDate: futureDate(10), ReservationTime: "14:00"}
	item.ID = 1
	carts := newFakeCartRepo("alice", item)
	svc := newTestService(newFakeReservationRepo(), carts, products, &fakeNotifier{}, &fakePublisher{})

	reservation, err := svc.Submit(context.Background(), &SubmitCommand{
		UserID:          "alice",
		ContactNumber:   "0917",
		GCashReference:  "GC-1",
		PaymentProofRef: "proofs/gc1.jpg",
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if reservation.Status != domain.StatusPendingPayment {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusPendingPayment)
	}
}

func TestSubmitLeadTimeViolationRejectedBeforeCreate(t *testing.T) {
	products := &fakeProducts{products: map[uint]*catalogdomain.Product{
		1: reservableProduct(1, "wedding cake", "2000.00", 7, "30"),
	}}
	item := domain.CartItem{CartID: 1, ProductID: 1, Quantity: 1, ReservationDate: futureDate(3), ReservationTime: "14:00"}
	item.ID = 1
	carts := newFakeCartRepo("alice", item)
	repo := newFakeReservationRepo()
	svc := newTestService(repo, carts, products, &fakeNotifier{}, &fakePublisher{})

	_, err := svc.Submit(context.Background(), &SubmitCommand{UserID: "alice", ContactNumber: "0917"})
	if !errs.HasCode(err, errs.CodeValidationFailure) {
		t.Fatalf("error = %v, want VALIDATION_FAILURE", err)
	}
	if len(repo.reservations) != 0 {
		t.Error("reservation must not be created on lead-time violation")
	}
	if carts.cleared {
		t.Error("cart must not be cleared on failure")
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	carts := newFakeCartRepo("alice")
	svc := newTestService(newFakeReservationRepo(), carts, &fakeProducts{products: map[uint]*catalogdomain.Product{}}, &fakeNotifier{}, &fakePublisher{})

	_, err := svc.Submit(context.Background(), &SubmitCommand{UserID: "alice", ContactNumber: "0917"})
	if !errs.HasCode(err, errs.CodeValidationFailure) {
		t.Fatalf("error = %v, want VALIDATION_FAILURE", err)
	}
}

func submitted(t *testing.T, svc *CommandService, withProof bool) *domain.Reservation {
	t.Helper()
	cmd := &SubmitCommand{UserID: "alice", ContactNumber: "0917"}
	if withProof {
		cmd.GCashReference = "GC-1"
		cmd.PaymentProofRef = "proofs/gc1.jpg"
	}
	reservation, err := svc.Submit(context.Background(), cmd)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return reservation
}

func newSubmittableService(t *testing.T) (*CommandService, *fakeReservationRepo, *fakeNotifier) {
	t.Helper()
	products := &fakeProducts{products: map[uint]*catalogdomain.Product{
		1: reservableProduct(1, "wedding cake", "2000.00", 7, "30"),
	}}
	item := domain.CartItem{CartID: 1, ProductID: 1, Quantity: 1, ReservationDate: futureDate(10), ReservationTime: "14:00"}
	item.ID = 1
	carts := newFakeCartRepo("alice", item)
	repo := newFakeReservationRepo()
	notifier := &fakeNotifier{}
	return newTestService(repo, carts, products, notifier, &fakePublisher{}), repo, notifier
}

func TestConfirmNotifiesCustomer(t *testing.T) {
	svc, _, notifier := newSubmittableService(t)
	created := submitted(t, svc, false)
	notifier.admin = nil

	reservation, err := svc.Confirm(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if reservation.Status != domain.StatusPendingPayment {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusPendingPayment)
	}
	if len(notifier.customer) != 1 || notifier.customer[0].typ != "reservation_confirmed" {
		t.Errorf("customer notifications = %+v, want one reservation_confirmed", notifier.customer)
	}
}

func TestSubmitPaymentNotifiesAdmin(t *testing.T) {
	svc, _, notifier := newSubmittableService(t)
	created := submitted(t, svc, false)
	if _, err := svc.Confirm(context.Background(), created.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	notifier.admin = nil
	notifier.customer = nil

	reservation, err := svc.SubmitPayment(context.Background(), created.ID, "alice", &SubmitPaymentCommand{
		GCashReference:  "GC-2",
		PaymentProofRef: "proofs/gc2.jpg",
	})
	if err != nil {
		t.Fatalf("submit payment failed: %v", err)
	}

	if reservation.Status != domain.StatusConfirmed {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusConfirmed)
	}
	// 买家自己发起的变更不通知买家
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %+v, want none", notifier.customer)
	}
	if len(notifier.admin) != 1 || notifier.admin[0].typ != "payment_pending" {
		t.Errorf("admin notifications = %+v, want one payment_pending", notifier.admin)
	}
}

func TestSubmitPaymentBeforeConfirmInvalid(t *testing.T) {
	svc, _, _ := newSubmittableService(t)
	created := submitted(t, svc, false)

	_, err := svc.SubmitPayment(context.Background(), created.ID, "alice", &SubmitPaymentCommand{
		GCashReference:  "GC-2",
		PaymentProofRef: "proofs/gc2.jpg",
	})
	if !errs.HasCode(err, errs.CodeInvalidTransition) {
		t.Fatalf("error = %v, want INVALID_TRANSITION", err)
	}
}

func TestAcceptPaymentRequiresProof(t *testing.T) {
	svc, _, notifier := newSubmittableService(t)
	created := submitted(t, svc, true)
	notifier.admin = nil

	reservation, err := svc.AcceptPayment(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("accept payment failed: %v", err)
	}
	if reservation.Status != domain.StatusConfirmed {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusConfirmed)
	}
	if len(notifier.customer) != 1 {
		t.Errorf("customer notifications = %+v, want 1", notifier.customer)
	}
}

func TestAcceptPaymentWithoutProof(t *testing.T) {
	svc, _, _ := newSubmittableService(t)
	created := submitted(t, svc, false)
	if _, err := svc.Confirm(context.Background(), created.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	_, err := svc.AcceptPayment(context.Background(), created.ID)
	if !errs.HasCode(err, errs.CodeValidationFailure) {
		t.Fatalf("error = %v, want VALIDATION_FAILURE", err)
	}
}

func TestRejectRecordsNote(t *testing.T) {
	svc, repo, notifier := newSubmittableService(t)
	created := submitted(t, svc, false)
	notifier.admin = nil

	reservation, err := svc.Reject(context.Background(), created.ID, "fully booked that week")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if reservation.Status != domain.StatusRejected {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusRejected)
	}
	if repo.reservations[created.ID].DecisionNote != "fully booked that week" {
		t.Errorf("decision note = %q", repo.reservations[created.ID].DecisionNote)
	}
	if len(notifier.customer) != 1 || notifier.customer[0].typ != "reservation_rejected" {
		t.Errorf("customer notifications = %+v, want one reservation_rejected", notifier.customer)
	}
}

func TestCustomerCancelNotifiesAdminOnly(t *testing.T) {
	svc, _, notifier := newSubmittableService(t)
	created := submitted(t, svc, false)
	notifier.admin = nil

	reservation, err := svc.Cancel(context.Background(), created.ID, "alice", false)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if reservation.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusCancelled)
	}
	if len(notifier.customer) != 0 {
		t.Errorf("customer notifications = %+v, want none for self-cancel", notifier.customer)
	}
	if len(notifier.admin) != 1 || notifier.admin[0].typ != "reservation_cancelled" {
		t.Errorf("admin notifications = %+v, want one reservation_cancelled", notifier.admin)
	}
}

func TestCancelWrongUser(t *testing.T) {
	svc, _, _ := newSubmittableService(t)
	created := submitted(t, svc, false)

	_, err := svc.Cancel(context.Background(), created.ID, "mallory", false)
	if !errs.HasCode(err, errs.CodeForbidden) {
		t.Fatalf("error = %v, want FORBIDDEN", err)
	}
}

func TestCompleteFromConfirmed(t *testing.T) {
	svc, _, notifier := newSubmittableService(t)
	created := submitted(t, svc, true)
	if _, err := svc.AcceptPayment(context.Background(), created.ID); err != nil {
		t.Fatalf("accept payment failed: %v", err)
	}
	notifier.customer = nil

	reservation, err := svc.Complete(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if reservation.Status != domain.StatusCompleted {
		t.Errorf("status = %s, want %s", reservation.Status, domain.StatusCompleted)
	}
	if len(notifier.customer) != 1 || notifier.customer[0].typ != "reservation_completed" {
		t.Errorf("customer notifications = %+v, want one reservation_completed", notifier.customer)
	}
}
