package user

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleMerchant Role = "MERCHANT"
	RoleBanker   Role = "BANKER"
	RoleAdmin    Role = "ADMIN"
)

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusUnverified Status = "UNVERIFIED"
)

type User struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"-"`
	UserID    string         `gorm:"size:32;uniqueIndex:ux_users_user_id_active" json:"user_id"`
	Email     string         `gorm:"size:255;uniqueIndex:ux_users_email_active" json:"email"`
	Name      string         `gorm:"size:255" json:"name"`
	Role      Role           `gorm:"size:16;index" json:"role"`
	Status    Status         `gorm:"size:16;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Customer *CustomerProfile `gorm:"foreignKey:UserNumID" json:"customer_profile,omitempty"`
	Merchant *MerchantProfile `gorm:"foreignKey:UserNumID" json:"merchant_profile,omitempty"`
	Banker   *BankerProfile   `gorm:"foreignKey:UserNumID" json:"banker_profile,omitempty"`
}

func (User) TableName() string { return "users" }

type CustomerProfile struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserNumID  uint64 `gorm:"uniqueIndex;not null" json:"-"`
	Address    string `gorm:"type:text" json:"address"`
	PostalCode string `gorm:"size:16" json:"postal_code,omitempty"`
	// MerchantID links a customer to the merchant that registered them,
	// enabling on-behalf operations. Empty for self-registered customers.
	MerchantID string `gorm:"size:32;index" json:"merchant_id,omitempty"`
}

func (CustomerProfile) TableName() string { return "customer_profiles" }

type MerchantProfile struct {
	ID             uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserNumID      uint64 `gorm:"uniqueIndex;not null" json:"-"`
	BusinessName   string `gorm:"size:255" json:"business_name"`
	RegistrationNo string `gorm:"size:64" json:"registration_no"`
}

func (MerchantProfile) TableName() string { return "merchant_profiles" }

type BankerProfile struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	UserNumID uint64 `gorm:"uniqueIndex;not null" json:"-"`
	BankID    string `gorm:"size:32;index" json:"bank_id"`
	Active    bool   `gorm:"default:true" json:"active"`
	// PostalCode declares the banker's catchment for the unassigned loan pool.
	PostalCode string `gorm:"size:16" json:"postal_code,omitempty"`
}

func (BankerProfile) TableName() string { return "banker_profiles" }

// Profile is the tagged-union view over the role-specific profile rows.
// Exactly one branch is non-nil for a well-formed user of that role.
type Profile struct {
	Customer *CustomerProfile
	Merchant *MerchantProfile
	Banker   *BankerProfile
}

func (u *User) Profile() Profile {
	switch u.Role {
	case RoleCustomer:
		return Profile{Customer: u.Customer}
	case RoleMerchant:
		return Profile{Merchant: u.Merchant}
	case RoleBanker:
		return Profile{Banker: u.Banker}
	case RoleAdmin:
		return Profile{}
	}
	return Profile{}
}

// OwnedBy reports whether this customer is linked to the given merchant.
func (u *User) OwnedBy(merchantID string) bool {
	return u.Role == RoleCustomer && u.Customer != nil && u.Customer.MerchantID == merchantID
}
