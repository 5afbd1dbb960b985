package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"lendflow-backend/internal/domain/apperr"
	"lendflow-backend/internal/domain/kyc"
	"lendflow-backend/internal/domain/loan"
)

// writeError maps domain errors to HTTP responses. Anything unrecognized
// becomes a 500 with a generic message so internals never leak.
func writeError(c echo.Context, err error) error {
	var (
		nf  *apperr.NotFoundError
		val *apperr.ValidationError
		md  *apperr.MissingDocumentsError
		dv  *apperr.DocumentVerificationError
		it  *apperr.InvalidTransitionError
		fb  *apperr.ForbiddenError
		ki  *apperr.KYCIncompleteError
		cf  *apperr.ConflictError
	)
	switch {
	case errors.As(err, &nf):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: nf.Error(), Code: "NOT_FOUND"})
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, kyc.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})
	case errors.As(err, &val):
		details := make([]FieldError, 0, len(val.Details))
		for _, d := range val.Details {
			details = append(details, FieldError{Field: d.Field, Message: d.Message})
		}
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Code: "VALIDATION", Details: details})
	case errors.As(err, &md):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "MISSING_DOCUMENTS", Missing: md.MissingTypes})
	case errors.As(err, &it):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_TRANSITION"})
	case errors.As(err, &fb):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "FORBIDDEN"})
	case errors.As(err, &cf):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "CONFLICT"})
	case errors.As(err, &dv):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "DOCUMENT_VERIFICATION", Missing: dv.DocumentIDs})
	case errors.As(err, &ki):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "KYC_INCOMPLETE", Missing: ki.MissingTypes})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
