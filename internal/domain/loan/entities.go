package loan

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("loan not found")

type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
	StatusDisbursed   Status = "DISBURSED"
	StatusCancelled   Status = "CANCELLED"
)

// KYCState is the cached, loan-level mirror of document-level truth. It is a
// read optimization only; the approval gate always recomputes readiness.
type KYCState string

const (
	KYCPending  KYCState = "PENDING"
	KYCVerified KYCState = "VERIFIED"
)

type Loan struct {
	ID         uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID     string `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	LoanTypeID string `gorm:"size:32;index" json:"loan_type_id"`

	// ApplicantID is the beneficiary. MerchantID is the submitting
	// intermediary; empty when the applicant submitted directly.
	ApplicantID string `gorm:"size:32;index:idx_loans_applicant" json:"applicant_id"`
	MerchantID  string `gorm:"size:32;index:idx_loans_merchant" json:"merchant_id,omitempty"`
	// BankerID is set iff the loan has entered review.
	BankerID string `gorm:"size:32;index:idx_loans_banker" json:"banker_id,omitempty"`

	Amount      float64 `gorm:"type:decimal(18,2)" json:"amount"`
	TenorMonths int     `json:"tenor_months"`
	// InterestRate is set only on approval.
	InterestRate float64         `gorm:"type:decimal(6,4)" json:"interest_rate,omitempty"`
	Metadata     json.RawMessage `gorm:"type:json" json:"metadata,omitempty"`
	// PostalCode is captured from the applicant at submission and drives
	// banker catchment visibility for the unassigned pool.
	PostalCode string `gorm:"size:16" json:"postal_code,omitempty"`

	Status          Status         `gorm:"size:16;default:'SUBMITTED';index" json:"status"`
	KYCStatus       KYCState       `gorm:"size:16;default:'PENDING'" json:"kyc_status"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusRejected, StatusDisbursed, StatusCancelled:
		return true
	}
	return false
}

// CanAssign: assignment (and re-assignment) is allowed until a decision.
func (s Status) CanAssign() bool {
	return s == StatusSubmitted || s == StatusUnderReview
}

func (s Status) CanDecide() bool { return s == StatusUnderReview }

func (s Status) CanDisburse() bool { return s == StatusApproved }

// CanCancel: cancellation stays possible post-approval, pre-disbursement.
func (s Status) CanCancel() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved:
		return true
	}
	return false
}

// Document links an uploaded KYC document to the loan application it was
// submitted with. Rows are created in the same transaction as the loan.
type Document struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanNumID uint64         `gorm:"column:loan_id;not null;index" json:"-"`
	DocID     string         `gorm:"size:32;index" json:"doc_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "loan_documents" }

type ListFilter struct {
	Status      Status
	ApplicantID string
	MerchantID  string
	BankerID    string
	// UnassignedPostalCode, when set together with BankerID, also includes
	// unassigned SUBMITTED loans in that catchment (banker pool visibility).
	UnassignedPostalCode string
	Limit                int
	Offset               int
}
