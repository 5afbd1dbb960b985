package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate row-locks the loan inside the enclosing
	// transaction so precondition checks hold until the write commits.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)
	List(ctx context.Context, f ListFilter) ([]Loan, error)
	// ListOpenByApplicant returns SUBMITTED and UNDER_REVIEW loans for the
	// kycStatus cache resync after a document verification.
	ListOpenByApplicant(ctx context.Context, applicantID string) ([]Loan, error)
	Save(ctx context.Context, l *Loan) error

	AddDocuments(ctx context.Context, loanNumID uint64, docIDs []string) error
	ListDocuments(ctx context.Context, loanNumID uint64) ([]Document, error)
}
