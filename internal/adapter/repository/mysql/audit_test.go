package mysql

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	domain "lendflow-backend/internal/domain/audit"
	"lendflow-backend/pkg/id"
)

type auditEntrySQLite struct {
	ID         uint64    `gorm:"primaryKey;column:id"`
	Action     string    `gorm:"size:64;column:action"`
	ActorID    string    `gorm:"size:32;column:actor_id"`
	EntityType string    `gorm:"size:32;column:entity_type"`
	EntityID   string    `gorm:"size:32;column:entity_id"`
	LoanID     string    `gorm:"size:32;column:loan_id"`
	Details    string    `gorm:"column:details"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (auditEntrySQLite) TableName() string { return "audit_logs" }

func openAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openTestDB(t)
	if err := db.AutoMigrate(&auditEntrySQLite{}); err != nil {
		t.Fatalf("auto-migrate audit_logs: %v", err)
	}
	return db
}

func TestAuditAppendAndListByLoan(t *testing.T) {
	db := openAuditTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	loanID := id.NewID32()
	actor := id.NewID32()
	actions := []string{domain.ActionLoanApplied, domain.ActionBankerAssigned, domain.ActionLoanApproved}
	for _, a := range actions {
		e := &domain.Entry{
			Action:     a,
			ActorID:    actor,
			EntityType: "loan",
			EntityID:   loanID,
			LoanID:     loanID,
		}
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append(%s): %v", a, err)
		}
	}
	// A different loan's trail must not bleed in.
	if err := repo.Append(ctx, &domain.Entry{
		Action: domain.ActionLoanApplied, ActorID: actor,
		EntityType: "loan", EntityID: id.NewID32(), LoanID: id.NewID32(),
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.ListByLoanID(ctx, loanID)
	if err != nil {
		t.Fatalf("ListByLoanID: %v", err)
	}
	if len(got) != len(actions) {
		t.Fatalf("entries: %d, want %d", len(got), len(actions))
	}
	// Chronological order, first event first.
	for i, a := range actions {
		if got[i].Action != a {
			t.Errorf("entry %d action = %s, want %s", i, got[i].Action, a)
		}
	}
}

func TestAuditListByEntity(t *testing.T) {
	db := openAuditTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	userID := id.NewID32()
	if err := repo.Append(ctx, &domain.Entry{
		Action:     domain.ActionUserStatusSet,
		ActorID:    id.NewID32(),
		EntityType: "user",
		EntityID:   userID,
		Details:    "ACTIVE -> INACTIVE",
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := repo.ListByEntity(ctx, "user", userID)
	if err != nil {
		t.Fatalf("ListByEntity: %v", err)
	}
	if len(got) != 1 || got[0].Details != "ACTIVE -> INACTIVE" {
		t.Fatalf("unexpected entries: %+v", got)
	}

	none, err := repo.ListByEntity(ctx, "loan", userID)
	if err != nil {
		t.Fatalf("ListByEntity: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("entity type filter leaked %d entries", len(none))
	}
}
