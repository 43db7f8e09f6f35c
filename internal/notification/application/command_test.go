package application

import (
	"context"
	"testing"
	"time"

	"github.com/wyfcoding/storefront/internal/notification/domain"
	"github.com/wyfcoding/storefront/pkg/errs"
)

type fakeRepo struct {
	notifications map[uint]*domain.Notification
	nextID        uint
	purgedBefore  time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{notifications: make(map[uint]*domain.Notification), nextID: 1}
}

func (r *fakeRepo) Append(_ context.Context, n *domain.Notification) error {
	n.ID = r.nextID
	r.nextID++
	r.notifications[n.ID] = n
	return nil
}

func (r *fakeRepo) ListForUser(_ context.Context, userID string, _, _ int) ([]*domain.Notification, int64, error) {
	var result []*domain.Notification
	for _, n := range r.notifications {
		if n.UserID != nil && *n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeRepo) ListForAdmin(_ context.Context, _, _ int) ([]*domain.Notification, int64, error) {
	var result []*domain.Notification
	for _, n := range r.notifications {
		if n.UserID == nil {
			result = append(result, n)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uint) (*domain.Notification, error) {
	n, ok := r.notifications[id]
	if !ok {
		return nil, errs.Newf(errs.CodeNotFound, "notification %d not found", id)
	}
	return n, nil
}

func (r *fakeRepo) MarkRead(_ context.Context, id uint) error {
	r.notifications[id].Read = true
	return nil
}

func (r *fakeRepo) MarkAllReadForUser(_ context.Context, userID string) error {
	for _, n := range r.notifications {
		if n.UserID != nil && *n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeRepo) MarkAllReadForAdmin(_ context.Context) error {
	for _, n := range r.notifications {
		if n.UserID == nil {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeRepo) CountUnreadForUser(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID != nil && *n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) CountUnreadForAdmin(_ context.Context) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == nil && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) PurgeRead(_ context.Context, before time.Time) (int64, error) {
	r.purgedBefore = before
	var deleted int64
	for id, n := range r.notifications {
		if n.Read && n.CreatedAt.Before(before) {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func TestRecorderAudience(t *testing.T) {
	repo := newFakeRepo()
	recorder := NewRecorder(repo, nil)
	ctx := context.Background()

	orderID := uint(7)
	if err := recorder.NotifyAdmin(ctx, "order_submitted", "New order", "Order #7", Ref{OrderID: &orderID}); err != nil {
		t.Fatalf("notify admin failed: %v", err)
	}
	if err := recorder.NotifyCustomer(ctx, "alice", "ready_for_pickup", "Ready", "Order #7 ready", Ref{OrderID: &orderID}); err != nil {
		t.Fatalf("notify customer failed: %v", err)
	}

	admin := repo.notifications[1]
	if !admin.ForAdmin() {
		t.Error("admin notification should have nil user")
	}
	if admin.OrderID == nil || *admin.OrderID != 7 {
		t.Errorf("admin notification order ref = %v", admin.OrderID)
	}

	customer := repo.notifications[2]
	if customer.ForAdmin() || *customer.UserID != "alice" {
		t.Errorf("customer notification user = %v", customer.UserID)
	}
}

func TestMarkReadOwnership(t *testing.T) {
	repo := newFakeRepo()
	recorder := NewRecorder(repo, nil)
	commands := NewCommandService(repo)
	ctx := context.Background()

	_ = recorder.NotifyCustomer(ctx, "alice", "order_completed", "Done", "", Ref{})
	_ = recorder.NotifyAdmin(ctx, "order_submitted", "New order", "", Ref{})

	// 买家只能标记自己的通知
	if err := commands.MarkRead(ctx, 1, "alice", false); err != nil {
		t.Errorf("owner mark read failed: %v", err)
	}
	if err := commands.MarkRead(ctx, 1, "mallory", false); !errs.HasCode(err, errs.CodeForbidden) {
		t.Errorf("error = %v, want FORBIDDEN", err)
	}

	// 管理员通知只有员工能标记
	if err := commands.MarkRead(ctx, 2, "alice", false); !errs.HasCode(err, errs.CodeForbidden) {
		t.Errorf("error = %v, want FORBIDDEN", err)
	}
	if err := commands.MarkRead(ctx, 2, "staff-1", true); err != nil {
		t.Errorf("staff mark read failed: %v", err)
	}
}

func TestPurgeRead(t *testing.T) {
	repo := newFakeRepo()
	commands := NewCommandService(repo)
	ctx := context.Background()

	old := &domain.Notification{Type: domain.TypeOrderCompleted, Read: true}
	old.CreatedAt = time.Now().AddDate(0, 0, -60)
	_ = repo.Append(ctx, old)

	oldUnread := &domain.Notification{Type: domain.TypeOrderSubmitted, Read: false}
	oldUnread.CreatedAt = time.Now().AddDate(0, 0, -60)
	_ = repo.Append(ctx, oldUnread)

	fresh := &domain.Notification{Type: domain.TypeOrderCompleted, Read: true}
	fresh.CreatedAt = time.Now().AddDate(0, 0, -5)
	_ = repo.Append(ctx, fresh)

	deleted, err := commands.PurgeRead(ctx, 30)
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1 (only old read notifications)", deleted)
	}
	if _, ok := repo.notifications[2]; !ok {
		t.Error("unread notification must survive the purge")
	}
	if _, ok := repo.notifications[3]; !ok {
		t.Error("recent notification must survive the purge")
	}

	if _, err := commands.PurgeRead(ctx, 0); !errs.HasCode(err, errs.CodeValidationFailure) {
		t.Errorf("error = %v, want VALIDATION_FAILURE", err)
	}
}
