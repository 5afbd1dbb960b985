package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"lendflow-backend/internal/domain/apperr"
	"lendflow-backend/internal/domain/audit"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/uow"
	"lendflow-backend/internal/domain/user"
	"lendflow-backend/internal/policy"
	"lendflow-backend/pkg/id"
)

// SchemaCompiler accepts or rejects a loan type's metadata schema document at
// write time.
type SchemaCompiler interface {
	Compile(schemaDoc []byte) error
}

type LoanTypeInput struct {
	Name         string            `json:"name"`
	Code         string            `json:"code"`
	Description  string            `json:"description"`
	Category     loantype.Category `json:"category"`
	MinAmount    float64           `json:"min_amount"`
	MaxAmount    float64           `json:"max_amount"`
	MinTenor     int               `json:"min_tenor_months"`
	MaxTenor     int               `json:"max_tenor_months"`
	MinRate      float64           `json:"min_rate"`
	MaxRate      float64           `json:"max_rate"`
	Schema       json.RawMessage   `json:"metadata_schema,omitempty"`
	RequiredDocs []string          `json:"required_docs,omitempty"`
}

type Usecase struct {
	users     user.Repository
	loanTypes loantype.Repository
	uow       uow.UnitOfWork
	compiler  SchemaCompiler
	log       *slog.Logger
	now       func() time.Time
}

func NewUsecase(users user.Repository, loanTypes loantype.Repository, tx uow.UnitOfWork, compiler SchemaCompiler, log *slog.Logger) *Usecase {
	return &Usecase{
		users:     users,
		loanTypes: loanTypes,
		uow:       tx,
		compiler:  compiler,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (u *Usecase) requireAdmin(ctx context.Context, actorID string) (*user.User, error) {
	actor, err := u.users.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, apperr.NotFound("user", actorID)
	}
	if actor.Role != user.RoleAdmin {
		return nil, apperr.Forbidden("admin role required")
	}
	return actor, nil
}

// CreateLoanType rejects structurally invalid schema documents and duplicate
// codes.
func (u *Usecase) CreateLoanType(ctx context.Context, actorID string, in LoanTypeInput) (*loantype.LoanType, error) {
	if _, err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "code", Message: "name and code are required"})
	}
	if err := u.compiler.Compile(in.Schema); err != nil {
		return nil, apperr.Validation(apperr.FieldError{Field: "metadata_schema", Message: err.Error()})
	}
	if _, err := u.loanTypes.GetByCode(ctx, code); err == nil {
		return nil, apperr.Conflict("loan type", "code "+code+" already exists")
	}

	requiredDocs, _ := json.Marshal(in.RequiredDocs)
	t := &loantype.LoanType{
		TypeID:         id.NewID32(),
		Name:           strings.TrimSpace(in.Name),
		Code:           code,
		Description:    in.Description,
		Category:       in.Category,
		MinAmount:      in.MinAmount,
		MaxAmount:      in.MaxAmount,
		MinTenor:       in.MinTenor,
		MaxTenor:       in.MaxTenor,
		MinRate:        in.MinRate,
		MaxRate:        in.MaxRate,
		MetadataSchema: in.Schema,
		RequiredDocs:   requiredDocs,
	}
	if err := u.loanTypes.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateLoanType re-checks schema validity; the code stays immutable.
func (u *Usecase) UpdateLoanType(ctx context.Context, actorID, typeID string, in LoanTypeInput) (*loantype.LoanType, error) {
	if _, err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	t, err := u.loanTypes.GetByTypeID(ctx, typeID)
	if err != nil {
		return nil, apperr.NotFound("loan type", typeID)
	}
	if err := u.compiler.Compile(in.Schema); err != nil {
		return nil, apperr.Validation(apperr.FieldError{Field: "metadata_schema", Message: err.Error()})
	}
	if strings.TrimSpace(in.Name) != "" {
		t.Name = strings.TrimSpace(in.Name)
	}
	t.Description = in.Description
	if in.Category != "" {
		t.Category = in.Category
	}
	t.MinAmount, t.MaxAmount = in.MinAmount, in.MaxAmount
	t.MinTenor, t.MaxTenor = in.MinTenor, in.MaxTenor
	t.MinRate, t.MaxRate = in.MinRate, in.MaxRate
	if in.Schema != nil {
		t.MetadataSchema = in.Schema
	}
	if in.RequiredDocs != nil {
		t.RequiredDocs, _ = json.Marshal(in.RequiredDocs)
	}
	if err := u.loanTypes.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *Usecase) ListLoanTypes(ctx context.Context) ([]loantype.LoanType, error) {
	return u.loanTypes.List(ctx)
}

func (u *Usecase) CreateBank(ctx context.Context, actorID, name, code string) (*loantype.Bank, error) {
	if _, err := u.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || strings.TrimSpace(name) == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "code", Message: "name and code are required"})
	}
	b := &loantype.Bank{BankID: id.NewID32(), Name: strings.TrimSpace(name), Code: code}
	if err := u.loanTypes.CreateBank(ctx, b); err != nil {
		return nil, apperr.Conflict("bank", "code "+code+" already exists")
	}
	return b, nil
}

// SetUserStatus changes a user's activation status. Admin only, never on the
// admin's own account.
func (u *Usecase) SetUserStatus(ctx context.Context, actorID, targetUserID string, status user.Status) (*user.User, error) {
	actor, err := u.requireAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var out *user.User
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		target, err := r.Users.GetByUserID(ctx, targetUserID)
		if err != nil {
			return apperr.NotFound("user", targetUserID)
		}
		if err := policy.CanChangeUserStatus(actor, target); err != nil {
			return err
		}
		target.Status = status
		if err := r.Users.Save(ctx, target); err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, &audit.Entry{
			Action:     audit.ActionUserStatusSet,
			ActorID:    actor.UserID,
			EntityType: "user",
			EntityID:   target.UserID,
			Details:    string(status),
		}); err != nil {
			return err
		}
		out = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetBankerActive toggles a banker's activation flag.
func (u *Usecase) SetBankerActive(ctx context.Context, actorID, bankerID string, active bool) error {
	if _, err := u.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	target, err := u.users.GetByUserID(ctx, bankerID)
	if err != nil {
		return apperr.NotFound("user", bankerID)
	}
	if target.Role != user.RoleBanker || target.Banker == nil {
		return apperr.Validation(apperr.FieldError{Field: "banker_id", Message: "user is not a banker"})
	}
	target.Banker.Active = active
	return u.users.Save(ctx, target)
}
