package loantypemock

import (
	"context"

	domain "lendflow-backend/internal/domain/loantype"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn          func(ctx context.Context, t *domain.LoanType) error
	GetByTypeIDFn     func(ctx context.Context, typeID string) (*domain.LoanType, error)
	GetByCodeFn       func(ctx context.Context, code string) (*domain.LoanType, error)
	ListFn            func(ctx context.Context) ([]domain.LoanType, error)
	SaveFn            func(ctx context.Context, t *domain.LoanType) error
	CreateBankFn      func(ctx context.Context, b *domain.Bank) error
	GetBankByBankIDFn func(ctx context.Context, bankID string) (*domain.Bank, error)
}

func (m *Repo) Create(ctx context.Context, t *domain.LoanType) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) GetByTypeID(ctx context.Context, typeID string) (*domain.LoanType, error) {
	if m.GetByTypeIDFn != nil {
		return m.GetByTypeIDFn(ctx, typeID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.LoanType, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.LoanType, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, t *domain.LoanType) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, t)
	}
	return nil
}

func (m *Repo) CreateBank(ctx context.Context, b *domain.Bank) error {
	if m.CreateBankFn != nil {
		return m.CreateBankFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetBankByBankID(ctx context.Context, bankID string) (*domain.Bank, error) {
	if m.GetBankByBankIDFn != nil {
		return m.GetBankByBankIDFn(ctx, bankID)
	}
	return nil, context.Canceled
}
