package auditmock

import (
	"context"
	"sync"

	domain "lendflow-backend/internal/domain/audit"
)

// Repo satisfies audit.Repository and records every appended entry so tests
// can assert exactly what was written.
type Repo struct {
	mu      sync.Mutex
	Entries []domain.Entry

	AppendFn func(ctx context.Context, e *domain.Entry) error
}

func (m *Repo) Append(ctx context.Context, e *domain.Entry) error {
	if m.AppendFn != nil {
		if err := m.AppendFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Entries = append(m.Entries, *e)
	m.mu.Unlock()
	return nil
}

func (m *Repo) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Entry
	for _, e := range m.Entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Repo) ListByLoanID(ctx context.Context, loanID string) ([]domain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Entry
	for _, e := range m.Entries {
		if e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}
