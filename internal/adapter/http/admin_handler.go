package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mw "lendflow-backend/internal/adapter/middleware"
	"lendflow-backend/internal/domain/user"
	"lendflow-backend/internal/usecase/admin"
)

type AdminHandler struct{ uc *admin.Usecase }

func NewAdminHandler(uc *admin.Usecase) *AdminHandler { return &AdminHandler{uc: uc} }

func (h *AdminHandler) CreateLoanType(c echo.Context) error {
	var in admin.LoanTypeInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	lt, err := h.uc.CreateLoanType(c.Request().Context(), mw.ActorID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, lt)
}

func (h *AdminHandler) UpdateLoanType(c echo.Context) error {
	var in admin.LoanTypeInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	lt, err := h.uc.UpdateLoanType(c.Request().Context(), mw.ActorID(c), c.Param("type_id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lt)
}

func (h *AdminHandler) ListLoanTypes(c echo.Context) error {
	lts, err := h.uc.ListLoanTypes(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loan_types": lts, "count": len(lts)})
}

type createBankReq struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

func (h *AdminHandler) CreateBank(c echo.Context) error {
	var req createBankReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	b, err := h.uc.CreateBank(c.Request().Context(), mw.ActorID(c), req.Name, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

type userStatusReq struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE UNVERIFIED"`
}

func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	var req userStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	u, err := h.uc.SetUserStatus(c.Request().Context(), mw.ActorID(c), c.Param("user_id"), user.Status(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

type bankerActiveReq struct {
	Active *bool `json:"active" validate:"required"`
}

func (h *AdminHandler) SetBankerActive(c echo.Context) error {
	var req bankerActiveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if err := h.uc.SetBankerActive(c.Request().Context(), mw.ActorID(c), c.Param("user_id"), *req.Active); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
