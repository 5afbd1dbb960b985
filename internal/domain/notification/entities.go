package notification

import "time"

type Kind string

const (
	KindLoanApproved  Kind = "LOAN_APPROVED"
	KindLoanRejected  Kind = "LOAN_REJECTED"
	KindLoanDisbursed Kind = "LOAN_DISBURSED"
	KindKYCVerified   Kind = "KYC_VERIFIED"
	KindKYCRejected   Kind = "KYC_REJECTED"
	KindVerifyAccount Kind = "VERIFY_ACCOUNT"
)

// Notification is a per-user informational message. It is not authoritative
// state; delivery is best-effort.
type Notification struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID    string    `gorm:"size:32;not null;index" json:"user_id"`
	Kind      Kind      `gorm:"size:32;not null" json:"kind"`
	Message   string    `gorm:"type:text" json:"message"`
	Read      bool      `gorm:"default:false;index" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
