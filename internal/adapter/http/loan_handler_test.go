package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "lendflow-backend/internal/adapter/middleware"
	"lendflow-backend/internal/domain/apperr"
	domain "lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/uow"
	"lendflow-backend/internal/domain/user"
	"lendflow-backend/internal/testutil/auditmock"
	"lendflow-backend/internal/testutil/kycmock"
	"lendflow-backend/internal/testutil/loanmock"
	"lendflow-backend/internal/testutil/loantypemock"
	"lendflow-backend/internal/testutil/notifymock"
	"lendflow-backend/internal/testutil/uowmock"
	"lendflow-backend/internal/testutil/usermock"
	kycuc "lendflow-backend/internal/usecase/kyc"
	uc "lendflow-backend/internal/usecase/loan"
)

const (
	hMerchantID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hCustomerID = "dddddddddddddddddddddddddddddddd"
	hTypeID     = "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"
	hLoanID     = "abababababababababababababababab"
)

// -------- stubs --------

type passSchema struct{}

func (passSchema) Validate(schemaDoc, instance []byte) ([]apperr.FieldError, error) { return nil, nil }

type passVerifier struct{}

func (passVerifier) Verify(ctx context.Context, docID string, owners []string) (bool, error) {
	return true, nil
}

type fullReadiness struct{}

func (fullReadiness) Readiness(ctx context.Context, userID string, role user.Role, category loantype.Category) (*kycuc.Readiness, error) {
	return &kycuc.Readiness{Complete: true, PercentComplete: 100}, nil
}

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newLoanHandler(loans *loanmock.Repo) *LoanHandler {
	merchant := &user.User{
		UserID: hMerchantID, Role: user.RoleMerchant, Status: user.StatusActive,
		Merchant: &user.MerchantProfile{BusinessName: "Ravi Traders"},
	}
	customer := &user.User{
		UserID: hCustomerID, Role: user.RoleCustomer, Status: user.StatusActive,
		Customer: &user.CustomerProfile{PostalCode: "560001", MerchantID: hMerchantID},
	}
	users := usermock.Directory(merchant, customer)
	types := &loantypemock.Repo{
		GetByTypeIDFn: func(ctx context.Context, typeID string) (*loantype.LoanType, error) {
			if typeID != hTypeID {
				return nil, gorm.ErrRecordNotFound
			}
			return &loantype.LoanType{TypeID: hTypeID, Code: "PL01", Category: loantype.CategoryPersonal}, nil
		},
	}
	repos := uow.Repos{
		Loans:     loans,
		LoanTypes: types,
		Users:     users,
		Documents: &kycmock.Repo{},
		Audit:     &auditmock.Repo{},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	usecase := uc.NewUsecase(
		uowmock.Passthrough(repos), loans, users, types, &kycmock.Repo{},
		passSchema{}, passVerifier{}, fullReadiness{}, &notifymock.Notifier{}, log,
	)
	return NewLoanHandler(usecase)
}

func newLoanCtx(e *echo.Echo, method, path string, body io.Reader, actorID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(mw.CtxActorID, actorID)
	return c, rec
}

// -------- tests --------

func TestApplyLoan_Success(t *testing.T) {
	e := newEchoWithValidator()
	loans := &loanmock.Repo{
		CreateFn: func(ctx context.Context, l *domain.Loan) error {
			l.ID = 1
			l.CreatedAt = time.Now().UTC()
			return nil
		},
	}
	h := newLoanHandler(loans)

	reqBody := map[string]any{
		"applicant": map[string]any{
			"kind":                 "EXISTING",
			"existing_customer_id": hCustomerID,
		},
		"loan_type_id": hTypeID,
		"amount":       250000.00,
		"tenor_months": 12,
	}
	c, rec := newLoanCtx(e, stdhttp.MethodPost, "/api/v1/loans", mustJSON(reqBody), hMerchantID)

	if err := h.Apply(c); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var got uc.LoanDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.ApplicantID != hCustomerID || got.MerchantID != hMerchantID {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Status != domain.StatusSubmitted || got.KYCStatus != domain.KYCPending {
		t.Fatalf("status = %s/%s, want SUBMITTED/PENDING", got.Status, got.KYCStatus)
	}
}

func TestApplyLoan_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := newLoanHandler(&loanmock.Repo{})

	c, rec := newLoanCtx(e, stdhttp.MethodPost, "/api/v1/loans", strings.NewReader(`{"loan_type_id":`), hMerchantID)

	if err := h.Apply(c); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestApplyLoan_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h := newLoanHandler(&loanmock.Repo{}) // never reached

	reqBody := map[string]any{
		"applicant":    map[string]any{"kind": "SELF"},
		"loan_type_id": "NOT_HEX_32",
		"amount":       250000.001, // more than 2 decimals
		"tenor_months": 12.5,       // not integer-like
	}
	c, rec := newLoanCtx(e, stdhttp.MethodPost, "/api/v1/loans", mustJSON(reqBody), hMerchantID)

	if err := h.Apply(c); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if er.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", er.Error, "validation failed")
	}
	if !containsFieldMsg(er.Details, "LoanTypeID", "32-char lowercase hex") {
		t.Fatalf("missing hex32 detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "Amount", "at most 2 decimal places") {
		t.Fatalf("missing dec2 detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "TenorMonths", "integer value") {
		t.Fatalf("missing intlike detail: %+v", er.Details)
	}
}

func TestApplyLoan_CustomerForbidden(t *testing.T) {
	e := newEchoWithValidator()
	h := newLoanHandler(&loanmock.Repo{})

	reqBody := map[string]any{
		"applicant":    map[string]any{"kind": "SELF"},
		"loan_type_id": hTypeID,
		"amount":       250000.00,
		"tenor_months": 12,
	}
	c, rec := newLoanCtx(e, stdhttp.MethodPost, "/api/v1/loans", mustJSON(reqBody), hCustomerID)

	if err := h.Apply(c); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("status = %d, want 403, body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Code != "FORBIDDEN" {
		t.Fatalf("code = %q, want FORBIDDEN", er.Code)
	}
}

func TestGetLoan_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	loans := &loanmock.Repo{
		GetByLoanIDFn: func(ctx context.Context, loanID string) (*domain.Loan, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	h := newLoanHandler(loans)

	c, rec := newLoanCtx(e, stdhttp.MethodGet, "/api/v1/loans/"+hLoanID, nil, hMerchantID)
	c.SetParamNames("loan_id")
	c.SetParamValues(hLoanID)

	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCancelLoan_InvalidTransition(t *testing.T) {
	e := newEchoWithValidator()
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(ctx context.Context, loanID string) (*domain.Loan, error) {
			return &domain.Loan{
				LoanID: hLoanID, ApplicantID: hCustomerID, MerchantID: hMerchantID,
				LoanTypeID: hTypeID, Status: domain.StatusDisbursed,
			}, nil
		},
	}
	h := newLoanHandler(loans)

	c, rec := newLoanCtx(e, stdhttp.MethodPost, "/api/v1/loans/"+hLoanID+"/cancel", mustJSON(map[string]string{"reason": "changed mind"}), hMerchantID)
	c.SetParamNames("loan_id")
	c.SetParamValues(hLoanID)

	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", rec.Code, rec.Body.String())
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Code != "INVALID_TRANSITION" {
		t.Fatalf("code = %q, want INVALID_TRANSITION", er.Code)
	}
}

func TestListLoans_ScopedToMerchant(t *testing.T) {
	e := newEchoWithValidator()
	loans := &loanmock.Repo{
		ListFn: func(ctx context.Context, f domain.ListFilter) ([]domain.Loan, error) {
			if f.MerchantID != hMerchantID {
				t.Errorf("merchant filter = %q, want %q", f.MerchantID, hMerchantID)
			}
			return []domain.Loan{{
				LoanID: hLoanID, ApplicantID: hCustomerID, MerchantID: hMerchantID,
				LoanTypeID: hTypeID, Status: domain.StatusSubmitted,
			}}, nil
		},
	}
	h := newLoanHandler(loans)

	c, rec := newLoanCtx(e, stdhttp.MethodGet, "/api/v1/loans", nil, hMerchantID)
	if err := h.List(c); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		Loans []uc.LoanDTO `json:"loans"`
		Count int          `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Count != 1 || len(got.Loans) != 1 || got.Loans[0].LoanID != hLoanID {
		t.Fatalf("unexpected list payload: %+v", got)
	}
}
