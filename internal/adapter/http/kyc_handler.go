package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "lendflow-backend/internal/adapter/middleware"
	"lendflow-backend/internal/domain/apperr"
	domainkyc "lendflow-backend/internal/domain/kyc"
	"lendflow-backend/internal/domain/loantype"
	"lendflow-backend/internal/domain/user"
	"lendflow-backend/internal/policy"
	"lendflow-backend/internal/usecase/kyc"
)

type KYCHandler struct {
	uc    *kyc.Usecase
	users user.Repository
}

func NewKYCHandler(uc *kyc.Usecase, users user.Repository) *KYCHandler {
	return &KYCHandler{uc: uc, users: users}
}

type uploadURLReq struct {
	DocType string `json:"doc_type" validate:"required,oneof=ID_PROOF ADDRESS_PROOF PAN_CARD BANK_STATEMENT"`
	UserID  string `json:"user_id"  validate:"omitempty,hex32"`
}

func (h *KYCHandler) GenerateUploadURL(c echo.Context) error {
	var req uploadURLReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dt, _ := domainkyc.ParseDocType(req.DocType)

	actorID := mw.ActorID(c)
	var grant *kyc.UploadGrant
	var err error
	if req.UserID == "" || req.UserID == actorID {
		grant, err = h.uc.GenerateUploadURL(c.Request().Context(), actorID, dt)
	} else {
		grant, err = h.uc.GenerateUploadURLOnBehalf(c.Request().Context(), actorID, req.UserID, dt)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, grant)
}

type completeUploadReq struct {
	StorageKey string `json:"storage_key"`
	UserID     string `json:"user_id" validate:"omitempty,hex32"`
}

func (h *KYCHandler) CompleteUpload(c echo.Context) error {
	var req completeUploadReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}

	actorID := mw.ActorID(c)
	docID := c.Param("doc_id")
	var dto *kyc.DocumentDTO
	var err error
	if req.UserID == "" || req.UserID == actorID {
		dto, err = h.uc.CompleteUpload(c.Request().Context(), actorID, docID, req.StorageKey)
	} else {
		dto, err = h.uc.CompleteUploadOnBehalf(c.Request().Context(), actorID, docID, req.StorageKey)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type verifyDocReq struct {
	Verified *bool  `json:"verified" validate:"required"`
	Notes    string `json:"notes"`
}

func (h *KYCHandler) VerifyDocument(c echo.Context) error {
	var req verifyDocReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.VerifyDocument(c.Request().Context(), kyc.VerifyInput{
		DocID:      c.Param("doc_id"),
		ReviewerID: mw.ActorID(c),
		Verified:   *req.Verified,
		Notes:      req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *KYCHandler) ListDocuments(c echo.Context) error {
	actorID := mw.ActorID(c)
	target := c.QueryParam("user_id")
	if target == "" {
		target = actorID
	}
	dtos, err := h.uc.ListDocuments(c.Request().Context(), actorID, target)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": dtos, "count": len(dtos)})
}

// Readiness reports the target user's document-set completeness for an
// optional loan category.
func (h *KYCHandler) Readiness(c echo.Context) error {
	actorID := mw.ActorID(c)
	target := c.QueryParam("user_id")
	if target == "" {
		target = actorID
	}
	actor, err := h.users.GetByUserID(c.Request().Context(), actorID)
	if err != nil {
		return writeError(c, apperr.NotFound("user", actorID))
	}
	tu, err := h.users.GetByUserID(c.Request().Context(), target)
	if err != nil {
		return writeError(c, apperr.NotFound("user", target))
	}
	if err := policy.CanActOnBehalf(actor, tu); err != nil {
		return writeError(c, err)
	}

	r, err := h.uc.Readiness(c.Request().Context(), tu.UserID, tu.Role, loantype.Category(c.QueryParam("category")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}
