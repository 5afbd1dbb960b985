package kyc

import (
	"context"
	"time"

	"lendflow-backend/internal/domain/kyc"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/notification"
	"lendflow-backend/internal/domain/user"
)

// ObjectStore is the backing object storage collaborator. Exists is used by
// the ownership verifier; SignUpload by the upload flow.
type ObjectStore interface {
	Exists(ctx context.Context, locator string) (bool, error)
	SignUpload(ctx context.Context, locator string) (map[string]string, error)
}

// Notifier dispatches user-facing messages. Implementations must be
// fire-and-forget: never block longer than a send, never surface failures.
type Notifier interface {
	Dispatch(userID string, kind notification.Kind, message string)
}

// Readiness is the completeness of a user's verified-document set against a
// role/loan-category requirement profile.
type Readiness struct {
	Complete        bool          `json:"complete"`
	RequiredTypes   []kyc.DocType `json:"required_types"`
	MissingTypes    []kyc.DocType `json:"missing_types"`
	VerifiedCount   int           `json:"verified_count"`
	PercentComplete int           `json:"percent_complete"`
}

type VerifyInput struct {
	DocID      string
	ReviewerID string
	Verified   bool // false = rejected
	Notes      string
}

type UploadGrant struct {
	DocID        string            `json:"doc_id"`
	StorageKey   string            `json:"storage_key"`
	SignedParams map[string]string `json:"signed_params"`
}

type DocumentDTO struct {
	DocID      string      `json:"doc_id"`
	UserID     string      `json:"user_id"`
	Type       kyc.DocType `json:"type"`
	StorageKey string      `json:"storage_key"`
	Status     kyc.Status  `json:"status"`
	VerifiedBy *string     `json:"verified_by,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

func toDTO(d *kyc.Document) *DocumentDTO {
	return &DocumentDTO{
		DocID:      d.DocID,
		UserID:     d.UserID,
		Type:       d.Type,
		StorageKey: d.StorageKey,
		Status:     d.Status,
		VerifiedBy: d.VerifiedBy,
		CreatedAt:  d.CreatedAt,
	}
}

// requiredTypes is a pure function of role unioned with loan-category extras.
func requiredTypes(role user.Role, category loantype.Category) []kyc.DocType {
	var base []kyc.DocType
	switch role {
	case user.RoleCustomer:
		base = []kyc.DocType{kyc.DocTypeIDProof, kyc.DocTypeAddressProof, kyc.DocTypePANCard}
	case user.RoleMerchant:
		base = []kyc.DocType{kyc.DocTypeIDProof, kyc.DocTypeAddressProof, kyc.DocTypePANCard, kyc.DocTypeBankStatement}
	case user.RoleBanker, user.RoleAdmin:
		return nil
	}

	var extra []kyc.DocType
	switch category {
	case loantype.CategoryBusiness:
		extra = []kyc.DocType{kyc.DocTypeBankStatement}
	case loantype.CategoryProperty:
		extra = []kyc.DocType{kyc.DocTypeAddressProof}
	}

	seen := make(map[kyc.DocType]struct{}, len(base)+len(extra))
	out := make([]kyc.DocType, 0, len(base)+len(extra))
	for _, t := range append(base, extra...) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
