package loantype

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"lendflow-backend/internal/domain/kyc"
)

var ErrNotFound = errors.New("loan type not found")

// Category is the coarse hint used to union extra KYC requirements on top of
// the role baseline.
type Category string

const (
	CategoryPersonal Category = "PERSONAL"
	CategoryBusiness Category = "BUSINESS"
	CategoryProperty Category = "PROPERTY"
)

type Bank struct {
	ID        uint64         `gorm:"primaryKey;column:id" json:"-"`
	BankID    string         `gorm:"size:32;uniqueIndex:ux_banks_bank_id_active" json:"bank_id"`
	Name      string         `gorm:"size:255" json:"name"`
	Code      string         `gorm:"size:32;uniqueIndex:ux_banks_code_active" json:"code"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Bank) TableName() string { return "banks" }

type LoanType struct {
	ID          uint64   `gorm:"primaryKey;column:id" json:"-"`
	TypeID      string   `gorm:"size:32;uniqueIndex:ux_loan_types_type_id_active" json:"type_id"`
	Name        string   `gorm:"size:255" json:"name"`
	Code        string   `gorm:"size:32;uniqueIndex:ux_loan_types_code_active" json:"code"`
	Description string   `gorm:"type:text" json:"description"`
	Category    Category `gorm:"size:16;default:'PERSONAL'" json:"category"`

	// Advisory bounds; the lifecycle engine does not enforce them.
	MinAmount float64 `gorm:"type:decimal(18,2)" json:"min_amount"`
	MaxAmount float64 `gorm:"type:decimal(18,2)" json:"max_amount"`
	MinTenor  int     `json:"min_tenor_months"`
	MaxTenor  int     `json:"max_tenor_months"`
	MinRate   float64 `gorm:"type:decimal(6,4)" json:"min_rate"`
	MaxRate   float64 `gorm:"type:decimal(6,4)" json:"max_rate"`

	// MetadataSchema, when present, must be a structurally valid JSON Schema
	// (rejected at write time otherwise).
	MetadataSchema json.RawMessage `gorm:"type:json" json:"metadata_schema,omitempty"`
	// RequiredDocs is a JSON array of kyc.DocType tags every application of
	// this type must include.
	RequiredDocs json.RawMessage `gorm:"type:json" json:"required_docs,omitempty"`

	Banks []Bank `gorm:"many2many:loan_type_banks" json:"banks,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (LoanType) TableName() string { return "loan_types" }

// RequiredDocTypes decodes the RequiredDocs column, dropping unknown tags.
func (t *LoanType) RequiredDocTypes() []kyc.DocType {
	if len(t.RequiredDocs) == 0 {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(t.RequiredDocs, &raw); err != nil {
		return nil
	}
	out := make([]kyc.DocType, 0, len(raw))
	for _, s := range raw {
		if dt, ok := kyc.ParseDocType(s); ok {
			out = append(out, dt)
		}
	}
	return out
}
