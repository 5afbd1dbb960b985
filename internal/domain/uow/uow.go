package uow

import (
	"context"

	"lendflow-backend/internal/domain/audit"
	"lendflow-backend/internal/domain/kyc"
	"lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/user"
)

type Repos struct {
	Loans     loan.Repository
	LoanTypes loantype.Repository
	Users     user.Repository
	Documents kyc.Repository
	Audit     audit.Repository
}

type UnitOfWork interface {
	// WithinTx runs fn in one db transaction; every repo in Repos is bound
	// to that transaction, so loan update + document inserts + audit entry
	// commit or roll back together.
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx locks the loan row first, then passes it in. Status
	// preconditions checked against l hold until commit.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
