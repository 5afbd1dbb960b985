package mysql

import (
	"context"

	"gorm.io/gorm"

	ltDomain "lendflow-backend/internal/domain/loantype"
)

type LoanTypeRepository struct{ db *gorm.DB }

func NewLoanTypeRepository(db *gorm.DB) *LoanTypeRepository { return &LoanTypeRepository{db: db} }

func (r *LoanTypeRepository) Create(ctx context.Context, t *ltDomain.LoanType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LoanTypeRepository) GetByTypeID(ctx context.Context, typeID string) (*ltDomain.LoanType, error) {
	var out ltDomain.LoanType
	res := r.db.WithContext(ctx).Preload("Banks").Where("type_id = ?", typeID).First(&out)
	return &out, res.Error
}

func (r *LoanTypeRepository) GetByCode(ctx context.Context, code string) (*ltDomain.LoanType, error) {
	var out ltDomain.LoanType
	res := r.db.WithContext(ctx).Where("code = ?", code).First(&out)
	return &out, res.Error
}

func (r *LoanTypeRepository) List(ctx context.Context) ([]ltDomain.LoanType, error) {
	var out []ltDomain.LoanType
	res := r.db.WithContext(ctx).Preload("Banks").Order("code ASC").Find(&out)
	return out, res.Error
}

func (r *LoanTypeRepository) Save(ctx context.Context, t *ltDomain.LoanType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *LoanTypeRepository) CreateBank(ctx context.Context, b *ltDomain.Bank) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *LoanTypeRepository) GetBankByBankID(ctx context.Context, bankID string) (*ltDomain.Bank, error) {
	var out ltDomain.Bank
	res := r.db.WithContext(ctx).Where("bank_id = ?", bankID).First(&out)
	return &out, res.Error
}
