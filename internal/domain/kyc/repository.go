package kyc

import "context"

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByDocID(ctx context.Context, docID string) (*Document, error)
	ListByUserID(ctx context.Context, userID string) ([]Document, error)
	Save(ctx context.Context, d *Document) error
}
