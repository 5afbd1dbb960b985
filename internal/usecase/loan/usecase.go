package loan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"lendflow-backend/internal/domain/apperr"
	"lendflow-backend/internal/domain/audit"
	domainkyc "lendflow-backend/internal/domain/kyc"
	"lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/notification"
	"lendflow-backend/internal/domain/uow"
	"lendflow-backend/internal/domain/user"
	"lendflow-backend/internal/policy"
	"lendflow-backend/pkg/id"
)

type Usecase struct {
	uow       uow.UnitOfWork
	loans     loan.Repository
	users     user.Repository
	loanTypes loantype.Repository
	docs      domainkyc.Repository
	schema    SchemaValidator
	verifier  DocumentVerifier
	readiness ReadinessChecker
	notifier  Notifier
	log       *slog.Logger
	now       func() time.Time
}

func NewUsecase(
	tx uow.UnitOfWork,
	loans loan.Repository,
	users user.Repository,
	loanTypes loantype.Repository,
	docs domainkyc.Repository,
	schema SchemaValidator,
	verifier DocumentVerifier,
	readiness ReadinessChecker,
	notifier Notifier,
	log *slog.Logger,
) *Usecase {
	return &Usecase{
		uow:       tx,
		loans:     loans,
		users:     users,
		loanTypes: loanTypes,
		docs:      docs,
		schema:    schema,
		verifier:  verifier,
		readiness: readiness,
		notifier:  notifier,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Apply creates a loan application. Metadata must validate against the loan
// type's schema, every required document type must be present, and every
// submitted document must pass existence and ownership verification. Loan,
// document links, the audit entry, and a NEW-applicant account commit in one
// transaction; any failure voids the whole application.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*LoanDTO, error) {
	actor, err := u.users.GetByUserID(ctx, in.ActorID)
	if err != nil {
		return nil, apperr.NotFound("user", in.ActorID)
	}
	if err := policy.CanApply(actor); err != nil {
		return nil, err
	}

	lt, err := u.loanTypes.GetByTypeID(ctx, in.LoanTypeID)
	if err != nil {
		return nil, apperr.NotFound("loan type", in.LoanTypeID)
	}

	if in.Amount <= 0 {
		return nil, apperr.Validation(apperr.FieldError{Field: "amount", Message: "must be positive"})
	}
	if in.TenorMonths <= 0 {
		return nil, apperr.Validation(apperr.FieldError{Field: "tenor_months", Message: "must be positive"})
	}

	if details, err := u.schema.Validate(lt.MetadataSchema, in.Metadata); err != nil {
		return nil, err
	} else if len(details) > 0 {
		return nil, &apperr.ValidationError{Details: details}
	}

	applicant, createApplicant, err := u.resolveApplicant(ctx, actor, in.Applicant)
	if err != nil {
		return nil, err
	}

	// Structural check: every loan-type-required document type must appear
	// among the submitted documents. Independent of verification status.
	submittedTypes := make(map[domainkyc.DocType]struct{}, len(in.DocumentIDs))
	for _, docID := range in.DocumentIDs {
		if d, err := u.docs.GetByDocID(ctx, docID); err == nil {
			submittedTypes[d.Type] = struct{}{}
		}
	}
	var missing []string
	for _, t := range lt.RequiredDocTypes() {
		if _, ok := submittedTypes[t]; !ok {
			missing = append(missing, string(t))
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.MissingDocumentsError{MissingTypes: missing}
	}

	// Every document must exist in storage and be namespaced under the
	// submitting or beneficiary identity. One bad document voids everything.
	owners := []string{actor.UserID, applicant.UserID}
	var failed []string
	for _, docID := range in.DocumentIDs {
		ok, err := u.verifier.Verify(ctx, docID, owners)
		if err != nil {
			return nil, err
		}
		if !ok {
			failed = append(failed, docID)
		}
	}
	if len(failed) > 0 {
		return nil, &apperr.DocumentVerificationError{DocumentIDs: failed}
	}

	l := &loan.Loan{
		LoanID:          id.NewID32(),
		LoanTypeID:      lt.TypeID,
		ApplicantID:     applicant.UserID,
		MerchantID:      actor.UserID,
		Amount:          in.Amount,
		TenorMonths:     in.TenorMonths,
		Metadata:        in.Metadata,
		Status:          loan.StatusSubmitted,
		KYCStatus:       loan.KYCPending,
		StatusUpdatedAt: u.now(),
	}
	if applicant.Customer != nil {
		l.PostalCode = applicant.Customer.PostalCode
	}

	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if createApplicant {
			if err := r.Users.Create(ctx, applicant); err != nil {
				return err
			}
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		if err := r.Loans.AddDocuments(ctx, l.ID, in.DocumentIDs); err != nil {
			return err
		}
		return r.Audit.Append(ctx, &audit.Entry{
			Action:     audit.ActionLoanApplied,
			ActorID:    actor.UserID,
			EntityType: "loan",
			EntityID:   l.LoanID,
			LoanID:     l.LoanID,
			Details:    fmt.Sprintf("amount=%.2f tenor=%d type=%s", in.Amount, in.TenorMonths, lt.Code),
		})
	})
	if err != nil {
		return nil, err
	}

	if createApplicant {
		// Out-of-band account verification send; never blocks submission.
		u.notifier.Dispatch(applicant.UserID, notification.KindVerifyAccount, "verify your account to proceed with your loan")
	}

	return u.enrich(ctx, l, lt.Category, applicant.Role), nil
}

func (u *Usecase) resolveApplicant(ctx context.Context, actor *user.User, spec ApplicantSpec) (*user.User, bool, error) {
	switch spec.Kind {
	case ApplicantSelf:
		return actor, false, nil
	case ApplicantExisting:
		target, err := u.users.GetByUserID(ctx, spec.ExistingCustomerID)
		if err != nil {
			return nil, false, apperr.NotFound("user", spec.ExistingCustomerID)
		}
		if target.Role != user.RoleCustomer {
			return nil, false, apperr.Validation(apperr.FieldError{Field: "existing_customer_id", Message: "referenced user is not a customer"})
		}
		return target, false, nil
	case ApplicantNew:
		nc := spec.NewCustomer
		if nc == nil || strings.TrimSpace(nc.Email) == "" || strings.TrimSpace(nc.Name) == "" {
			return nil, false, apperr.Validation(apperr.FieldError{Field: "new_customer", Message: "name and email are required"})
		}
		created := &user.User{
			UserID: id.NewID32(),
			Email:  strings.ToLower(strings.TrimSpace(nc.Email)),
			Name:   strings.TrimSpace(nc.Name),
			Role:   user.RoleCustomer,
			Status: user.StatusUnverified,
			Customer: &user.CustomerProfile{
				Address:    nc.Address,
				PostalCode: nc.PostalCode,
				MerchantID: actor.UserID,
			},
		}
		return created, true, nil
	}
	return nil, false, apperr.Validation(apperr.FieldError{Field: "applicant", Message: "kind must be SELF, EXISTING or NEW"})
}

// AssignBanker moves a loan into review under the given banker.
// Re-assignment of an UNDER_REVIEW loan is permitted; the previous reviewer
// is recorded in the audit details.
func (u *Usecase) AssignBanker(ctx context.Context, in AssignInput) (*LoanDTO, error) {
	actor, err := u.users.GetByUserID(ctx, in.ActorID)
	if err != nil {
		return nil, apperr.NotFound("user", in.ActorID)
	}
	if err := policy.CanAssign(actor); err != nil {
		return nil, err
	}
	banker, err := u.users.GetByUserID(ctx, in.BankerID)
	if err != nil {
		return nil, apperr.NotFound("user", in.BankerID)
	}
	if banker.Role != user.RoleBanker {
		return nil, apperr.Validation(apperr.FieldError{Field: "banker_id", Message: "user is not a banker"})
	}

	var out *loan.Loan
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.Status.CanAssign() {
			return &apperr.InvalidTransitionError{From: string(l.Status), Operation: "assign"}
		}
		previous := l.BankerID
		l.BankerID = banker.UserID
		l.Status = loan.StatusUnderReview
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		details := "assigned to " + banker.UserID
		if previous != "" && previous != banker.UserID {
			details += " (handoff from " + previous + ")"
		}
		if err := r.Audit.Append(ctx, &audit.Entry{
			Action:     audit.ActionBankerAssigned,
			ActorID:    actor.UserID,
			EntityType: "loan",
			EntityID:   l.LoanID,
			LoanID:     l.LoanID,
			Details:    details,
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.enrichByApplicant(ctx, out), nil
}

// Approve is KYC-gated: readiness is recomputed from document truth inside
// the decision, never read from the loan-level cache.
func (u *Usecase) Approve(ctx context.Context, in ApproveInput) (*LoanDTO, error) {
	banker, err := u.users.GetByUserID(ctx, in.BankerID)
	if err != nil {
		return nil, apperr.NotFound("user", in.BankerID)
	}
	if in.InterestRate <= 0 {
		return nil, apperr.Validation(apperr.FieldError{Field: "interest_rate", Message: "must be positive"})
	}

	var out *loan.Loan
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.Status.CanDecide() {
			return &apperr.InvalidTransitionError{From: string(l.Status), Operation: "approve"}
		}
		if err := policy.CanDecide(banker, l); err != nil {
			return err
		}

		applicant, err := r.Users.GetByUserID(ctx, l.ApplicantID)
		if err != nil {
			return apperr.NotFound("user", l.ApplicantID)
		}
		category := loantype.CategoryPersonal
		if lt, err := r.LoanTypes.GetByTypeID(ctx, l.LoanTypeID); err == nil {
			category = lt.Category
		}
		ready, err := u.readiness.Readiness(ctx, applicant.UserID, applicant.Role, category)
		if err != nil {
			return err
		}
		if !ready.Complete {
			missing := make([]string, 0, len(ready.MissingTypes))
			for _, t := range ready.MissingTypes {
				missing = append(missing, string(t))
			}
			return &apperr.KYCIncompleteError{MissingTypes: missing, PercentComplete: ready.PercentComplete}
		}

		l.Status = loan.StatusApproved
		l.KYCStatus = loan.KYCVerified
		l.InterestRate = in.InterestRate
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, &audit.Entry{
			Action:     audit.ActionLoanApproved,
			ActorID:    banker.UserID,
			EntityType: "loan",
			EntityID:   l.LoanID,
			LoanID:     l.LoanID,
			Details:    fmt.Sprintf("rate=%.4f notes=%s", in.InterestRate, in.Notes),
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Dispatch(out.ApplicantID, notification.KindLoanApproved, "your loan was approved")
	if out.MerchantID != "" && out.MerchantID != out.ApplicantID {
		u.notifier.Dispatch(out.MerchantID, notification.KindLoanApproved, "loan "+out.LoanID+" was approved")
	}
	return u.enrichByApplicant(ctx, out), nil
}

// Reject requires a non-empty reason; rejection is terminal.
func (u *Usecase) Reject(ctx context.Context, in RejectInput) (*LoanDTO, error) {
	banker, err := u.users.GetByUserID(ctx, in.BankerID)
	if err != nil {
		return nil, apperr.NotFound("user", in.BankerID)
	}
	if strings.TrimSpace(in.Notes) == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "notes", Message: "rejection must carry a reason"})
	}

	var out *loan.Loan
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.Status.CanDecide() {
			return &apperr.InvalidTransitionError{From: string(l.Status), Operation: "reject"}
		}
		if err := policy.CanDecide(banker, l); err != nil {
			return err
		}
		l.Status = loan.StatusRejected
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, &audit.Entry{
			Action:     audit.ActionLoanRejected,
			ActorID:    banker.UserID,
			EntityType: "loan",
			EntityID:   l.LoanID,
			LoanID:     l.LoanID,
			Details:    in.Notes,
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Dispatch(out.ApplicantID, notification.KindLoanRejected, "your loan was rejected: "+in.Notes)
	return u.enrichByApplicant(ctx, out), nil
}

// Disburse settles an approved loan against an external reference. The
// disbursement record is merged into the loan metadata, never replacing it.
func (u *Usecase) Disburse(ctx context.Context, in DisburseInput) (*LoanDTO, error) {
	banker, err := u.users.GetByUserID(ctx, in.BankerID)
	if err != nil {
		return nil, apperr.NotFound("user", in.BankerID)
	}
	if strings.TrimSpace(in.ReferenceID) == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "reference_id", Message: "settlement reference is required"})
	}

	var out *loan.Loan
	err = u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *loan.Loan) error {
		if !l.Status.CanDisburse() {
			return &apperr.InvalidTransitionError{From: string(l.Status), Operation: "disburse"}
		}
		if err := policy.CanDecide(banker, l); err != nil {
			return err
		}

		merged, err := mergeDisbursement(l.Metadata, in.ReferenceID, in.Notes, u.now())
		if err != nil {
			return err
		}
		l.Metadata = merged
		l.Status = loan.StatusDisbursed
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, &audit.Entry{
			Action:     audit.ActionLoanDisbursed,
			ActorID:    banker.UserID,
			EntityType: "loan",
			EntityID:   l.LoanID,
			LoanID:     l.LoanID,
			Details:    "reference=" + in.ReferenceID,
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Dispatch(out.ApplicantID, notification.KindLoanDisbursed, "your loan was disbursed (ref "+in.ReferenceID+")")
	return u.enrichByApplicant(ctx, out), nil
}

func mergeDisbursement(metadata json.RawMessage, referenceID, notes string, at time.Time) (json.RawMessage, error) {
	doc := map[string]any{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc); err != nil {
			return nil, err
		}
	}
	doc["disbursement"] = map[string]any{
		"reference": referenceID,
		"notes":     notes,
		"at":        at.Format(time.RFC3339),
	}
	return json.Marshal(doc)
}

// Cancel is available to the applicant or the submitting merchant up to
// disbursement; no notification is sent.
func (u *Usecase) Cancel(ctx context.Context, loanID, actorID, reason string) (*LoanDTO, error) {
	actor, err := u.users.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, apperr.NotFound("user", actorID)
	}

	var out *loan.Loan
	err = u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		if err := policy.CanCancel(actor, l); err != nil {
			return err
		}
		if !l.Status.CanCancel() {
			return &apperr.InvalidTransitionError{From: string(l.Status), Operation: "cancel"}
		}
		l.Status = loan.StatusCancelled
		l.StatusUpdatedAt = u.now()
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		if err := r.Audit.Append(ctx, &audit.Entry{
			Action:     audit.ActionLoanCancelled,
			ActorID:    actor.UserID,
			EntityType: "loan",
			EntityID:   l.LoanID,
			LoanID:     l.LoanID,
			Details:    reason,
		}); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u.enrichByApplicant(ctx, out), nil
}

// Get returns a loan with a live readiness computation, subject to
// role-scoped visibility.
func (u *Usecase) Get(ctx context.Context, actorID, loanID string) (*LoanDTO, error) {
	actor, err := u.users.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, apperr.NotFound("user", actorID)
	}
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, apperr.NotFound("loan", loanID)
	}
	if err := policy.CanView(actor, l); err != nil {
		return nil, err
	}
	return u.enrichByApplicant(ctx, l), nil
}

// List applies role-scoped visibility: merchants see loans they submitted,
// customers their own, bankers their assignments plus the unassigned pool in
// their catchment, admins everything.
func (u *Usecase) List(ctx context.Context, actorID string, status loan.Status, limit, offset int) ([]LoanDTO, error) {
	actor, err := u.users.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, apperr.NotFound("user", actorID)
	}

	f := loan.ListFilter{Status: status, Limit: limit, Offset: offset}
	switch actor.Role {
	case user.RoleMerchant:
		f.MerchantID = actor.UserID
	case user.RoleCustomer:
		f.ApplicantID = actor.UserID
	case user.RoleBanker:
		f.BankerID = actor.UserID
		if actor.Banker != nil && actor.Banker.PostalCode != "" {
			f.UnassignedPostalCode = actor.Banker.PostalCode
		}
	case user.RoleAdmin:
		// no scoping
	}

	list, err := u.loans.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(list))
	for i := range list {
		out = append(out, *u.enrichByApplicant(ctx, &list[i]))
	}
	return out, nil
}

// enrichByApplicant attaches the live readiness result for the loan's
// applicant. Enrichment is best-effort on reads: a failed lookup degrades to
// a DTO without the readiness block rather than failing the read.
func (u *Usecase) enrichByApplicant(ctx context.Context, l *loan.Loan) *LoanDTO {
	applicant, err := u.users.GetByUserID(ctx, l.ApplicantID)
	if err != nil {
		u.log.Warn("readiness enrichment skipped", "loan_id", l.LoanID, "err", err)
		return toDTO(l, nil)
	}
	category := loantype.CategoryPersonal
	if lt, err := u.loanTypes.GetByTypeID(ctx, l.LoanTypeID); err == nil {
		category = lt.Category
	}
	return u.enrich(ctx, l, category, applicant.Role)
}

func (u *Usecase) enrich(ctx context.Context, l *loan.Loan, category loantype.Category, role user.Role) *LoanDTO {
	ready, err := u.readiness.Readiness(ctx, l.ApplicantID, role, category)
	if err != nil {
		u.log.Warn("readiness enrichment skipped", "loan_id", l.LoanID, "err", err)
		return toDTO(l, nil)
	}
	return toDTO(l, ready)
}
