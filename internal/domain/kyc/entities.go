package kyc

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("kyc document not found")

type DocType string

const (
	DocTypeIDProof       DocType = "ID_PROOF"
	DocTypeAddressProof  DocType = "ADDRESS_PROOF"
	DocTypePANCard       DocType = "PAN_CARD"
	DocTypeBankStatement DocType = "BANK_STATEMENT"
)

func ParseDocType(s string) (DocType, bool) {
	switch DocType(strings.ToUpper(strings.TrimSpace(s))) {
	case DocTypeIDProof:
		return DocTypeIDProof, true
	case DocTypeAddressProof:
		return DocTypeAddressProof, true
	case DocTypePANCard:
		return DocTypePANCard, true
	case DocTypeBankStatement:
		return DocTypeBankStatement, true
	}
	return "", false
}

type Status string

const (
	StatusUploading Status = "UPLOADING"
	StatusPending   Status = "PENDING"
	StatusVerified  Status = "VERIFIED"
	StatusRejected  Status = "REJECTED"
)

type Document struct {
	ID     uint64  `gorm:"primaryKey;column:id" json:"-"`
	DocID  string  `gorm:"size:32;uniqueIndex:ux_kyc_docs_doc_id_active" json:"doc_id"`
	UserID string  `gorm:"size:32;index:idx_kyc_docs_user" json:"user_id"`
	Type   DocType `gorm:"size:32;index" json:"type"`
	// StorageKey is always server-derived; see StorageKeyFor.
	StorageKey string         `gorm:"size:255" json:"storage_key"`
	Status     Status         `gorm:"size:16;default:'UPLOADING'" json:"status"`
	VerifiedBy *string        `gorm:"size:32" json:"verified_by,omitempty"`
	Notes      string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Document) TableName() string { return "kyc_documents" }

// StorageKeyFor is the canonical locator for a document. Upload completion
// never trusts a client-supplied key; it always persists this value.
func StorageKeyFor(ownerUserID string, t DocType, docID string) string {
	return fmt.Sprintf("%s/%s/%s", ownerUserID, strings.ToLower(string(t)), docID)
}

// OwnedByAny reports whether the storage key is namespaced under one of the
// given owner ids. Ownership is a prefix convention enforced here, not by
// storage ACLs.
func (d *Document) OwnedByAny(ownerIDs []string) bool {
	for _, id := range ownerIDs {
		if id != "" && strings.HasPrefix(d.StorageKey, id+"/") {
			return true
		}
	}
	return false
}
