package kycmock

import (
	"context"

	domain "lendflow-backend/internal/domain/kyc"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn       func(ctx context.Context, d *domain.Document) error
	GetByDocIDFn   func(ctx context.Context, docID string) (*domain.Document, error)
	ListByUserIDFn func(ctx context.Context, userID string) ([]domain.Document, error)
	SaveFn         func(ctx context.Context, d *domain.Document) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Document) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByDocID(ctx context.Context, docID string) (*domain.Document, error) {
	if m.GetByDocIDFn != nil {
		return m.GetByDocIDFn(ctx, docID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Document, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, d *domain.Document) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}
