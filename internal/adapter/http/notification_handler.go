package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	mw "lendflow-backend/internal/adapter/middleware"
	"lendflow-backend/internal/domain/apperr"
	"lendflow-backend/internal/domain/notification"
)

// NotificationHandler exposes the per-user inbox. Notifications are
// informational only, so the handler talks to the repository directly.
type NotificationHandler struct {
	repo notification.Repository
}

func NewNotificationHandler(repo notification.Repository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

func (h *NotificationHandler) List(c echo.Context) error {
	unreadOnly := c.QueryParam("unread") == "true"
	items, err := h.repo.ListByUserID(c.Request().Context(), mw.ActorID(c), unreadOnly)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": items, "count": len(items)})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification id"})
	}
	if err := h.repo.MarkRead(c.Request().Context(), mw.ActorID(c), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return writeError(c, apperr.NotFound("notification", c.Param("id")))
		}
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
