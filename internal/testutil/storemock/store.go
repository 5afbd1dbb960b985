package storemock

import "context"

// Store is a function-backed object storage double. Unset Exists reports
// every locator as present.
type Store struct {
	ExistsFn     func(ctx context.Context, locator string) (bool, error)
	SignUploadFn func(ctx context.Context, locator string) (map[string]string, error)
}

func (m *Store) Exists(ctx context.Context, locator string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, locator)
	}
	return true, nil
}

func (m *Store) SignUpload(ctx context.Context, locator string) (map[string]string, error) {
	if m.SignUploadFn != nil {
		return m.SignUploadFn(ctx, locator)
	}
	return map[string]string{"public_id": locator, "signature": "test"}, nil
}
