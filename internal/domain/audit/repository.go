package audit

import "context"

// Repository is append-only: there are deliberately no update or delete
// methods.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]Entry, error)
	ListByLoanID(ctx context.Context, loanID string) ([]Entry, error)
}
