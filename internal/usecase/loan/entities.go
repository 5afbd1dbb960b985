package loan

import (
	"context"
	"encoding/json"
	"time"

	"lendflow-backend/internal/domain/apperr"
	"lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/notification"
	"lendflow-backend/internal/domain/user"
	kycuc "lendflow-backend/internal/usecase/kyc"
)

// SchemaValidator validates application metadata against the loan type's
// schema document.
type SchemaValidator interface {
	Validate(schemaDoc, instance []byte) ([]apperr.FieldError, error)
}

// DocumentVerifier checks existence and ownership of a submitted document
// handle.
type DocumentVerifier interface {
	Verify(ctx context.Context, docID string, expectedOwnerIDs []string) (bool, error)
}

// ReadinessChecker is the KYC readiness engine consulted by the approval
// gate. The gate always recomputes; it never trusts the loan-level cache.
type ReadinessChecker interface {
	Readiness(ctx context.Context, userID string, role user.Role, category loantype.Category) (*kycuc.Readiness, error)
}

// Notifier dispatches user-facing messages fire-and-forget; it cannot fail
// the caller.
type Notifier interface {
	Dispatch(userID string, kind notification.Kind, message string)
}

type ApplicantKind string

const (
	ApplicantSelf     ApplicantKind = "SELF"
	ApplicantExisting ApplicantKind = "EXISTING"
	ApplicantNew      ApplicantKind = "NEW"
)

// ApplicantSpec names the loan beneficiary: the submitting merchant itself,
// an existing customer, or inline details for a new customer account.
type ApplicantSpec struct {
	Kind               ApplicantKind `json:"kind"`
	ExistingCustomerID string        `json:"existing_customer_id,omitempty"`
	NewCustomer        *NewCustomer  `json:"new_customer,omitempty"`
}

type NewCustomer struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
}

type ApplyInput struct {
	ActorID     string
	Applicant   ApplicantSpec
	LoanTypeID  string
	Amount      float64
	TenorMonths int
	Metadata    json.RawMessage
	DocumentIDs []string
}

type AssignInput struct {
	LoanID   string
	BankerID string
	ActorID  string
}

type ApproveInput struct {
	LoanID       string
	BankerID     string
	InterestRate float64
	Notes        string
}

type RejectInput struct {
	LoanID   string
	BankerID string
	Notes    string
}

type DisburseInput struct {
	LoanID      string
	BankerID    string
	ReferenceID string
	Notes       string
}

type LoanDTO struct {
	LoanID          string           `json:"loan_id"`
	LoanTypeID      string           `json:"loan_type_id"`
	ApplicantID     string           `json:"applicant_id"`
	MerchantID      string           `json:"merchant_id,omitempty"`
	BankerID        string           `json:"banker_id,omitempty"`
	Amount          float64          `json:"amount"`
	TenorMonths     int              `json:"tenor_months"`
	InterestRate    float64          `json:"interest_rate,omitempty"`
	Metadata        json.RawMessage  `json:"metadata,omitempty"`
	Status          loan.Status      `json:"status"`
	KYCStatus       loan.KYCState    `json:"kyc_status"`
	KYC             *kycuc.Readiness `json:"kyc,omitempty"`
	StatusUpdatedAt time.Time        `json:"status_updated_at"`
	CreatedAt       time.Time        `json:"created_at"`
}

func toDTO(l *loan.Loan, r *kycuc.Readiness) *LoanDTO {
	return &LoanDTO{
		LoanID:          l.LoanID,
		LoanTypeID:      l.LoanTypeID,
		ApplicantID:     l.ApplicantID,
		MerchantID:      l.MerchantID,
		BankerID:        l.BankerID,
		Amount:          l.Amount,
		TenorMonths:     l.TenorMonths,
		InterestRate:    l.InterestRate,
		Metadata:        l.Metadata,
		Status:          l.Status,
		KYCStatus:       l.KYCStatus,
		KYC:             r,
		StatusUpdatedAt: l.StatusUpdatedAt,
		CreatedAt:       l.CreatedAt,
	}
}
