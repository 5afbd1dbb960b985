package audit

import "time"

// Action tags written by the lifecycle and KYC engines. One row per
// successful transition; rows are never mutated or deleted.
const (
	ActionLoanApplied    = "LOAN_APPLIED"
	ActionBankerAssigned = "BANKER_ASSIGNED"
	ActionLoanApproved   = "LOAN_APPROVED"
	ActionLoanRejected   = "LOAN_REJECTED"
	ActionLoanDisbursed  = "LOAN_DISBURSED"
	ActionLoanCancelled  = "LOAN_CANCELLED"
	ActionKYCVerified    = "KYC_DOC_VERIFIED"
	ActionKYCRejected    = "KYC_DOC_REJECTED"
	ActionUserStatusSet  = "USER_STATUS_CHANGED"
)

type Entry struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	Action     string    `gorm:"size:64;not null;index" json:"action"`
	ActorID    string    `gorm:"size:32;not null;index" json:"actor_id"`
	EntityType string    `gorm:"size:32;not null" json:"entity_type"`
	EntityID   string    `gorm:"size:32;not null;index" json:"entity_id"`
	LoanID     string    `gorm:"size:32;index" json:"loan_id,omitempty"`
	Details    string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Entry) TableName() string { return "audit_logs" }
