package loanmock

import (
	"context"

	domain "lendflow-backend/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateFn               func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn          func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListFn                 func(ctx context.Context, f domain.ListFilter) ([]domain.Loan, error)
	ListOpenByApplicantFn  func(ctx context.Context, applicantID string) ([]domain.Loan, error)
	SaveFn                 func(ctx context.Context, l *domain.Loan) error
	AddDocumentsFn         func(ctx context.Context, loanNumID uint64, docIDs []string) error
	ListDocumentsFn        func(ctx context.Context, loanNumID uint64) ([]domain.Document, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context, f domain.ListFilter) ([]domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, nil
}

func (m *Repo) ListOpenByApplicant(ctx context.Context, applicantID string) ([]domain.Loan, error) {
	if m.ListOpenByApplicantFn != nil {
		return m.ListOpenByApplicantFn(ctx, applicantID)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) AddDocuments(ctx context.Context, loanNumID uint64, docIDs []string) error {
	if m.AddDocumentsFn != nil {
		return m.AddDocumentsFn(ctx, loanNumID, docIDs)
	}
	return nil
}

func (m *Repo) ListDocuments(ctx context.Context, loanNumID uint64) ([]domain.Document, error) {
	if m.ListDocumentsFn != nil {
		return m.ListDocumentsFn(ctx, loanNumID)
	}
	return nil, nil
}
