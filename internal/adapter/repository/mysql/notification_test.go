package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	domain "lendflow-backend/internal/domain/notification"
	"lendflow-backend/pkg/id"
)

type notificationSQLite struct {
	ID        uint64    `gorm:"primaryKey;column:id"`
	UserID    string    `gorm:"size:32;column:user_id"`
	Kind      string    `gorm:"size:32;column:kind"`
	Message   string    `gorm:"column:message"`
	Read      bool      `gorm:"column:read"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (notificationSQLite) TableName() string { return "notifications" }

func openNotificationTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openTestDB(t)
	if err := db.AutoMigrate(&notificationSQLite{}); err != nil {
		t.Fatalf("auto-migrate notifications: %v", err)
	}
	return db
}

func TestNotificationListByUserID(t *testing.T) {
	db := openNotificationTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	userID := id.NewID32()
	read := &domain.Notification{UserID: userID, Kind: domain.KindLoanApproved, Message: "approved", Read: true}
	unread := &domain.Notification{UserID: userID, Kind: domain.KindLoanDisbursed, Message: "disbursed"}
	foreign := &domain.Notification{UserID: id.NewID32(), Kind: domain.KindKYCVerified, Message: "other"}
	for _, n := range []*domain.Notification{read, unread, foreign} {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.ListByUserID(ctx, userID, false)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all notifications: %d, want 2", len(all))
	}

	pending, err := repo.ListByUserID(ctx, userID, true)
	if err != nil {
		t.Fatalf("ListByUserID unread: %v", err)
	}
	if len(pending) != 1 || pending[0].Kind != domain.KindLoanDisbursed {
		t.Fatalf("unread notifications: %+v", pending)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	db := openNotificationTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	userID := id.NewID32()
	n := &domain.Notification{UserID: userID, Kind: domain.KindLoanRejected, Message: "rejected"}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.MarkRead(ctx, userID, n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	got, err := repo.ListByUserID(ctx, userID, true)
	if err != nil {
		t.Fatalf("ListByUserID unread: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("notification still unread after MarkRead")
	}
}

func TestNotificationMarkRead_WrongOwner(t *testing.T) {
	db := openNotificationTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	owner := id.NewID32()
	n := &domain.Notification{UserID: owner, Kind: domain.KindVerifyAccount, Message: "verify"}
	if err := repo.Create(ctx, n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Another user cannot ack someone else's notification.
	if err := repo.MarkRead(ctx, id.NewID32(), n.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
	// Unknown id behaves the same.
	if err := repo.MarkRead(ctx, owner, 9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}
