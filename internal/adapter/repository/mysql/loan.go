package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	loanDomain "lendflow-backend/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

// GetByLoanIDForUpdate locks the row inside the enclosing transaction so the
// precondition check and the write commit together.
func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) List(ctx context.Context, f loanDomain.ListFilter) ([]loanDomain.Loan, error) {
	q := r.db.WithContext(ctx).Model(&loanDomain.Loan{})

	if f.BankerID != "" && f.UnassignedPostalCode != "" {
		// Assigned to this banker, or sitting unassigned in their catchment.
		q = q.Where(
			"banker_id = ? OR (banker_id = '' AND status = ? AND postal_code = ?)",
			f.BankerID, loanDomain.StatusSubmitted, f.UnassignedPostalCode,
		)
	} else if f.BankerID != "" {
		q = q.Where("banker_id = ?", f.BankerID)
	}
	if f.ApplicantID != "" {
		q = q.Where("applicant_id = ?", f.ApplicantID)
	}
	if f.MerchantID != "" {
		q = q.Where("merchant_id = ?", f.MerchantID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var out []loanDomain.Loan
	res := q.Order("created_at DESC, id DESC").Limit(limit).Offset(f.Offset).Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListOpenByApplicant(ctx context.Context, applicantID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("applicant_id = ? AND status IN ?", applicantID,
			[]loanDomain.Status{loanDomain.StatusSubmitted, loanDomain.StatusUnderReview}).
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) AddDocuments(ctx context.Context, loanNumID uint64, docIDs []string) error {
	if len(docIDs) == 0 {
		return nil
	}
	rows := make([]loanDomain.Document, 0, len(docIDs))
	for _, docID := range docIDs {
		rows = append(rows, loanDomain.Document{LoanNumID: loanNumID, DocID: docID})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *LoanRepository) ListDocuments(ctx context.Context, loanNumID uint64) ([]loanDomain.Document, error) {
	var out []loanDomain.Document
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanNumID).Find(&out)
	return out, res.Error
}
