package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	mw "lendflow-backend/internal/adapter/middleware"
	domainloan "lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type applicantReq struct {
	Kind               string `json:"kind"                 validate:"required,oneof=SELF EXISTING NEW"`
	ExistingCustomerID string `json:"existing_customer_id" validate:"omitempty,hex32"`
	NewCustomer        *struct {
		Name       string `json:"name"        validate:"required"`
		Email      string `json:"email"       validate:"required,email"`
		Address    string `json:"address"     validate:"required"`
		PostalCode string `json:"postal_code" validate:"required"`
	} `json:"new_customer" validate:"omitempty"`
}

type applyLoanReq struct {
	Applicant   applicantReq    `json:"applicant"     validate:"required"`
	LoanTypeID  string          `json:"loan_type_id"  validate:"required,hex32"`
	Amount      float64         `json:"amount"        validate:"required,gt=0,dec2"`
	TenorMonths float64         `json:"tenor_months"  validate:"required,gt=0,intlike"`
	Metadata    json.RawMessage `json:"metadata"`
	DocumentIDs []string        `json:"document_ids"  validate:"dive,hex32"`
}

func (h *LoanHandler) Apply(c echo.Context) error {
	var req applyLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	in := loan.ApplyInput{
		ActorID: mw.ActorID(c),
		Applicant: loan.ApplicantSpec{
			Kind:               loan.ApplicantKind(req.Applicant.Kind),
			ExistingCustomerID: req.Applicant.ExistingCustomerID,
		},
		LoanTypeID:  req.LoanTypeID,
		Amount:      req.Amount,
		TenorMonths: int(req.TenorMonths),
		Metadata:    req.Metadata,
		DocumentIDs: req.DocumentIDs,
	}
	if nc := req.Applicant.NewCustomer; nc != nil {
		in.Applicant.NewCustomer = &loan.NewCustomer{
			Name:       nc.Name,
			Email:      nc.Email,
			Address:    nc.Address,
			PostalCode: nc.PostalCode,
		}
	}

	dto, err := h.uc.Apply(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type assignReq struct {
	BankerID string `json:"banker_id" validate:"required,hex32"`
}

func (h *LoanHandler) Assign(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.AssignBanker(c.Request().Context(), loan.AssignInput{
		LoanID:   c.Param("loan_id"),
		BankerID: req.BankerID,
		ActorID:  mw.ActorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type approveReq struct {
	InterestRate float64 `json:"interest_rate" validate:"required,gt=0,dec2"`
	Notes        string  `json:"notes"`
}

func (h *LoanHandler) Approve(c echo.Context) error {
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Approve(c.Request().Context(), loan.ApproveInput{
		LoanID:       c.Param("loan_id"),
		BankerID:     mw.ActorID(c),
		InterestRate: req.InterestRate,
		Notes:        req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type rejectReq struct {
	Notes string `json:"notes" validate:"required"`
}

func (h *LoanHandler) Reject(c echo.Context) error {
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Reject(c.Request().Context(), loan.RejectInput{
		LoanID:   c.Param("loan_id"),
		BankerID: mw.ActorID(c),
		Notes:    req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type disburseReq struct {
	ReferenceID string `json:"reference_id" validate:"required"`
	Notes       string `json:"notes"`
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	var req disburseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Disburse(c.Request().Context(), loan.DisburseInput{
		LoanID:      c.Param("loan_id"),
		BankerID:    mw.ActorID(c),
		ReferenceID: req.ReferenceID,
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type cancelReq struct {
	Reason string `json:"reason"`
}

func (h *LoanHandler) Cancel(c echo.Context) error {
	var req cancelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("loan_id"), mw.ActorID(c), req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), mw.ActorID(c), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	dtos, err := h.uc.List(c.Request().Context(), mw.ActorID(c), domainloan.Status(c.QueryParam("status")), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": dtos, "count": len(dtos)})
}
