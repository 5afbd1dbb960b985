package kyc

import (
	"context"

	"lendflow-backend/internal/domain/kyc"
)

// Verifier checks that a submitted document handle both exists in the backing
// object store and is namespaced under an authorized identity. Ownership is a
// storage-key prefix convention enforced here at the application layer, not
// by storage ACLs: a real object with the wrong prefix is not owned.
type Verifier struct {
	docs  kyc.Repository
	store ObjectStore
}

func NewVerifier(docs kyc.Repository, store ObjectStore) *Verifier {
	return &Verifier{docs: docs, store: store}
}

// Verify reports whether docID resolves to a document owned by one of
// expectedOwnerIDs whose object is present in storage. A storage 404 maps to
// false rather than an error.
func (v *Verifier) Verify(ctx context.Context, docID string, expectedOwnerIDs []string) (bool, error) {
	doc, err := v.docs.GetByDocID(ctx, docID)
	if err != nil {
		return false, nil
	}
	if !doc.OwnedByAny(expectedOwnerIDs) {
		return false, nil
	}
	exists, err := v.store.Exists(ctx, doc.StorageKey)
	if err != nil {
		return false, err
	}
	return exists, nil
}
