package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	domain "lendflow-backend/internal/domain/user"
	"lendflow-backend/pkg/id"
)

type userSQLite struct {
	ID        uint64         `gorm:"primaryKey;column:id"`
	UserID    string         `gorm:"size:32;column:user_id"`
	Email     string         `gorm:"size:255;column:email"`
	Name      string         `gorm:"size:255;column:name"`
	Role      string         `gorm:"size:16;column:role"`
	Status    string         `gorm:"size:16;column:status"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at"`
}

func (userSQLite) TableName() string { return "users" }

type customerProfileSQLite struct {
	ID         uint64 `gorm:"primaryKey;column:id"`
	UserNumID  uint64 `gorm:"column:user_num_id"`
	Address    string `gorm:"column:address"`
	PostalCode string `gorm:"size:16;column:postal_code"`
	MerchantID string `gorm:"size:32;column:merchant_id"`
}

func (customerProfileSQLite) TableName() string { return "customer_profiles" }

type merchantProfileSQLite struct {
	ID             uint64 `gorm:"primaryKey;column:id"`
	UserNumID      uint64 `gorm:"column:user_num_id"`
	BusinessName   string `gorm:"size:255;column:business_name"`
	RegistrationNo string `gorm:"size:64;column:registration_no"`
}

func (merchantProfileSQLite) TableName() string { return "merchant_profiles" }

type bankerProfileSQLite struct {
	ID         uint64 `gorm:"primaryKey;column:id"`
	UserNumID  uint64 `gorm:"column:user_num_id"`
	BankID     string `gorm:"size:32;column:bank_id"`
	Active     bool   `gorm:"column:active"`
	PostalCode string `gorm:"size:16;column:postal_code"`
}

func (bankerProfileSQLite) TableName() string { return "banker_profiles" }

func openUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := openTestDB(t)
	if err := db.AutoMigrate(
		&userSQLite{}, &customerProfileSQLite{}, &merchantProfileSQLite{}, &bankerProfileSQLite{},
	); err != nil {
		t.Fatalf("auto-migrate users: %v", err)
	}
	return db
}

func TestUserCreateAndGet_PreloadsProfile(t *testing.T) {
	db := openUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	userID := id.NewID32()
	merchantID := id.NewID32()
	u := &domain.User{
		UserID: userID,
		Email:  "asha@example.com",
		Name:   "Asha",
		Role:   domain.RoleCustomer,
		Status: domain.StatusActive,
		Customer: &domain.CustomerProfile{
			Address:    "14 MG Road",
			PostalCode: "560001",
			MerchantID: merchantID,
		},
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.Customer == nil {
		t.Fatalf("customer profile not preloaded")
	}
	if got.Customer.PostalCode != "560001" || got.Customer.MerchantID != merchantID {
		t.Errorf("unexpected profile: %+v", got.Customer)
	}
	if !got.OwnedBy(merchantID) {
		t.Errorf("OwnedBy(%s) = false", merchantID)
	}
}

func TestUserGetByEmail(t *testing.T) {
	db := openUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &domain.User{
		UserID: id.NewID32(),
		Email:  "ravi@example.com",
		Name:   "Ravi",
		Role:   domain.RoleMerchant,
		Status: domain.StatusActive,
		Merchant: &domain.MerchantProfile{
			BusinessName:   "Ravi Traders",
			RegistrationNo: "REG-42",
		},
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "ravi@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.UserID != u.UserID || got.Merchant == nil || got.Merchant.BusinessName != "Ravi Traders" {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestUserSave_PersistsProfileChanges(t *testing.T) {
	db := openUserTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	userID := id.NewID32()
	u := &domain.User{
		UserID: userID,
		Email:  "banker@example.com",
		Name:   "Meera",
		Role:   domain.RoleBanker,
		Status: domain.StatusActive,
		Banker: &domain.BankerProfile{
			BankID:     id.NewID32(),
			Active:     true,
			PostalCode: "560001",
		},
	}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	u.Status = domain.StatusInactive
	u.Banker.Active = false
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got.Status != domain.StatusInactive {
		t.Errorf("status = %s, want INACTIVE", got.Status)
	}
	if got.Banker == nil || got.Banker.Active {
		t.Errorf("banker profile not updated: %+v", got.Banker)
	}
}
