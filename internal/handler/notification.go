package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/notify"
	"github.com/sumire/fixhub/internal/service"
)

// NotificationHandler handles notification feed endpoints.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Recent returns the user's most recent notifications, unread first.
func (h *NotificationHandler) Recent(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	items, err := h.notifications.Recent(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	localize(items, GetLocale(c))
	return JSON(c, http.StatusOK, items)
}

// History returns one page of the user's notification history.
func (h *NotificationHandler) History(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return &domain.ValidationError{Field: "page", Message: "must be a positive integer"}
		}
		page = parsed
	}

	items, err := h.notifications.History(c.Request().Context(), userID, page)
	if err != nil {
		return err
	}

	localize(items, GetLocale(c))
	return JSONList(c, http.StatusOK, items, PaginationMeta{
		Page:    page,
		HasMore: len(items) == h.notifications.PageSize(),
	})
}

// ToggleRead flips a notification's read flag.
func (h *NotificationHandler) ToggleRead(c echo.Context) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	item, err := h.notifications.ToggleRead(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}

	item.Message = notify.Localize(GetLocale(c), item.Message)
	return JSON(c, http.StatusOK, item)
}

func localize(items []domain.Notification, loc notify.Locale) {
	if loc == notify.DefaultLocale {
		return
	}
	for i := range items {
		items[i].Message = notify.Localize(loc, items[i].Message)
	}
}
