package loantype

import "context"

type Repository interface {
	Create(ctx context.Context, t *LoanType) error
	GetByTypeID(ctx context.Context, typeID string) (*LoanType, error)
	GetByCode(ctx context.Context, code string) (*LoanType, error)
	List(ctx context.Context) ([]LoanType, error)
	Save(ctx context.Context, t *LoanType) error

	CreateBank(ctx context.Context, b *Bank) error
	GetBankByBankID(ctx context.Context, bankID string) (*Bank, error)
}
