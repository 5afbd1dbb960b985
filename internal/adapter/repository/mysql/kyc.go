package mysql

import (
	"context"

	"gorm.io/gorm"

	kycDomain "lendflow-backend/internal/domain/kyc"
)

type KYCRepository struct{ db *gorm.DB }

func NewKYCRepository(db *gorm.DB) *KYCRepository { return &KYCRepository{db: db} }

func (r *KYCRepository) Create(ctx context.Context, d *kycDomain.Document) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *KYCRepository) GetByDocID(ctx context.Context, docID string) (*kycDomain.Document, error) {
	var out kycDomain.Document
	res := r.db.WithContext(ctx).Where("doc_id = ?", docID).First(&out)
	return &out, res.Error
}

func (r *KYCRepository) ListByUserID(ctx context.Context, userID string) ([]kycDomain.Document, error) {
	var out []kycDomain.Document
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *KYCRepository) Save(ctx context.Context, d *kycDomain.Document) error {
	return r.db.WithContext(ctx).Save(d).Error
}
