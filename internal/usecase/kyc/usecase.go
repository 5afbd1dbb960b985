package kyc

import (
	"context"
	"log/slog"
	"math"
	"time"

	"lendflow-backend/internal/domain/apperr"
	"lendflow-backend/internal/domain/audit"
	"lendflow-backend/internal/domain/kyc"
	"lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/notification"
	"lendflow-backend/internal/domain/uow"
	"lendflow-backend/internal/domain/user"
	"lendflow-backend/internal/policy"
	"lendflow-backend/pkg/id"
)

type Usecase struct {
	docs     kyc.Repository
	users    user.Repository
	uow      uow.UnitOfWork
	store    ObjectStore
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

func NewUsecase(docs kyc.Repository, users user.Repository, tx uow.UnitOfWork, store ObjectStore, notifier Notifier, log *slog.Logger) *Usecase {
	return &Usecase{
		docs:     docs,
		users:    users,
		uow:      tx,
		store:    store,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Readiness computes document-set completeness for a user. Pure read path:
// only VERIFIED documents satisfy a requirement, and calling it twice without
// intervening writes yields identical results.
func (u *Usecase) Readiness(ctx context.Context, userID string, role user.Role, category loantype.Category) (*Readiness, error) {
	docs, err := u.docs.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return computeReadiness(role, category, docs), nil
}

func computeReadiness(role user.Role, category loantype.Category, docs []kyc.Document) *Readiness {
	required := requiredTypes(role, category)
	verified := make(map[kyc.DocType]struct{})
	for _, d := range docs {
		if d.Status == kyc.StatusVerified {
			verified[d.Type] = struct{}{}
		}
	}

	missing := make([]kyc.DocType, 0)
	count := 0
	for _, t := range required {
		if _, ok := verified[t]; ok {
			count++
		} else {
			missing = append(missing, t)
		}
	}

	pct := 0
	if len(required) > 0 {
		pct = int(math.Round(100 * float64(count) / float64(len(required))))
	}
	return &Readiness{
		Complete:        len(missing) == 0,
		RequiredTypes:   required,
		MissingTypes:    missing,
		VerifiedCount:   count,
		PercentComplete: pct,
	}
}

// VerifyDocument records a reviewer decision on a document. The status
// update, audit entry and open-loan kycStatus resync commit together; the
// user notification is dispatched best-effort after commit.
func (u *Usecase) VerifyDocument(ctx context.Context, in VerifyInput) (*DocumentDTO, error) {
	reviewer, err := u.users.GetByUserID(ctx, in.ReviewerID)
	if err != nil {
		return nil, apperr.NotFound("user", in.ReviewerID)
	}
	if reviewer.Role != user.RoleBanker && reviewer.Role != user.RoleAdmin {
		return nil, apperr.Forbidden("only bankers or admins may verify documents")
	}

	var dto *DocumentDTO
	var ownerID string
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		doc, err := r.Documents.GetByDocID(ctx, in.DocID)
		if err != nil {
			return apperr.NotFound("document", in.DocID)
		}
		if doc.Status == kyc.StatusUploading {
			return apperr.Conflict("document", "upload not completed")
		}
		ownerID = doc.UserID

		action := audit.ActionKYCRejected
		if in.Verified {
			doc.Status = kyc.StatusVerified
			// A rejected document never records a verifier.
			rid := in.ReviewerID
			doc.VerifiedBy = &rid
			action = audit.ActionKYCVerified
		} else {
			doc.Status = kyc.StatusRejected
			doc.VerifiedBy = nil
		}
		doc.Notes = in.Notes
		if err := r.Documents.Save(ctx, doc); err != nil {
			return err
		}

		if err := r.Audit.Append(ctx, &audit.Entry{
			Action:     action,
			ActorID:    in.ReviewerID,
			EntityType: "kyc_document",
			EntityID:   doc.DocID,
			Details:    in.Notes,
		}); err != nil {
			return err
		}

		if err := u.resyncOpenLoans(ctx, r, doc.UserID); err != nil {
			return err
		}

		dto = toDTO(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Email/event fan-out stays outside the transaction: at-most-effort,
	// failures logged, never surfaced.
	if dto.Status == kyc.StatusVerified {
		u.notifier.Dispatch(ownerID, notification.KindKYCVerified, "KYC document verified")
	} else {
		u.notifier.Dispatch(ownerID, notification.KindKYCRejected, "KYC document rejected")
	}
	return dto, nil
}

// resyncOpenLoans re-derives the cached kycStatus on every SUBMITTED or
// UNDER_REVIEW loan of the user from current document truth.
func (u *Usecase) resyncOpenLoans(ctx context.Context, r uow.Repos, userID string) error {
	owner, err := r.Users.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	loans, err := r.Loans.ListOpenByApplicant(ctx, userID)
	if err != nil {
		return err
	}
	docs, err := r.Documents.ListByUserID(ctx, userID)
	if err != nil {
		return err
	}
	for i := range loans {
		category := loantype.CategoryPersonal
		if lt, err := r.LoanTypes.GetByTypeID(ctx, loans[i].LoanTypeID); err == nil {
			category = lt.Category
		}
		state := loan.KYCPending
		if computeReadiness(owner.Role, category, docs).Complete {
			state = loan.KYCVerified
		}
		if loans[i].KYCStatus == state {
			continue
		}
		loans[i].KYCStatus = state
		if err := r.Loans.Save(ctx, &loans[i]); err != nil {
			return err
		}
	}
	return nil
}

// GenerateUploadURL opens an upload slot for the actor's own document.
func (u *Usecase) GenerateUploadURL(ctx context.Context, actorID string, docType kyc.DocType) (*UploadGrant, error) {
	return u.GenerateUploadURLOnBehalf(ctx, actorID, actorID, docType)
}

// GenerateUploadURLOnBehalf opens an upload slot for the target user. The
// actor must be the target, a merchant the target belongs to, or a
// banker/admin.
func (u *Usecase) GenerateUploadURLOnBehalf(ctx context.Context, actorID, targetUserID string, docType kyc.DocType) (*UploadGrant, error) {
	actor, err := u.users.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, apperr.NotFound("user", actorID)
	}
	target, err := u.users.GetByUserID(ctx, targetUserID)
	if err != nil {
		return nil, apperr.NotFound("user", targetUserID)
	}
	if err := policy.CanActOnBehalf(actor, target); err != nil {
		return nil, err
	}

	doc := &kyc.Document{
		DocID:  id.NewID32(),
		UserID: target.UserID,
		Type:   docType,
		Status: kyc.StatusUploading,
	}
	doc.StorageKey = kyc.StorageKeyFor(target.UserID, docType, doc.DocID)
	if err := u.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	signed, err := u.store.SignUpload(ctx, doc.StorageKey)
	if err != nil {
		return nil, err
	}
	return &UploadGrant{DocID: doc.DocID, StorageKey: doc.StorageKey, SignedParams: signed}, nil
}

// CompleteUpload moves a document from UPLOADING to PENDING.
func (u *Usecase) CompleteUpload(ctx context.Context, actorID, docID, clientStorageKey string) (*DocumentDTO, error) {
	return u.CompleteUploadOnBehalf(ctx, actorID, docID, clientStorageKey)
}

// CompleteUploadOnBehalf finishes an upload. The client-supplied storage key
// is never trusted: the expected locator is rebuilt from (owner, type, docID)
// and persisted server-side whenever the client value differs.
func (u *Usecase) CompleteUploadOnBehalf(ctx context.Context, actorID, docID, clientStorageKey string) (*DocumentDTO, error) {
	actor, err := u.users.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, apperr.NotFound("user", actorID)
	}
	doc, err := u.docs.GetByDocID(ctx, docID)
	if err != nil {
		return nil, apperr.NotFound("document", docID)
	}
	owner, err := u.users.GetByUserID(ctx, doc.UserID)
	if err != nil {
		return nil, apperr.NotFound("user", doc.UserID)
	}
	if err := policy.CanActOnBehalf(actor, owner); err != nil {
		return nil, err
	}
	if doc.Status != kyc.StatusUploading {
		return nil, apperr.Conflict("document", "upload already completed")
	}

	expected := kyc.StorageKeyFor(doc.UserID, doc.Type, doc.DocID)
	if clientStorageKey != expected {
		u.log.Warn("client storage key mismatch, overriding",
			"doc_id", doc.DocID, "client_key", clientStorageKey, "expected", expected)
	}
	doc.StorageKey = expected
	doc.Status = kyc.StatusPending
	if err := u.docs.Save(ctx, doc); err != nil {
		return nil, err
	}
	return toDTO(doc), nil
}

// ListDocuments returns the target user's documents, subject to the
// on-behalf relationship check.
func (u *Usecase) ListDocuments(ctx context.Context, actorID, targetUserID string) ([]DocumentDTO, error) {
	actor, err := u.users.GetByUserID(ctx, actorID)
	if err != nil {
		return nil, apperr.NotFound("user", actorID)
	}
	target, err := u.users.GetByUserID(ctx, targetUserID)
	if err != nil {
		return nil, apperr.NotFound("user", targetUserID)
	}
	if err := policy.CanActOnBehalf(actor, target); err != nil {
		return nil, err
	}
	docs, err := u.docs.ListByUserID(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentDTO, 0, len(docs))
	for i := range docs {
		out = append(out, *toDTO(&docs[i]))
	}
	return out, nil
}
