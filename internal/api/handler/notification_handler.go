package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carrental/storefront/internal/infrastructure/rentalapi"
)

type NotificationHandler struct {
	notifications *rentalapi.NotificationAPI
}

func NewNotificationHandler(n *rentalapi.NotificationAPI) *NotificationHandler {
	return &NotificationHandler{notifications: n}
}

// Mine lists the user's notifications.
//
// @Summary      My notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  listView[domain.Notification]
// @Router       /notifications [get]
func (h *NotificationHandler) Mine(c echo.Context) error {
	res, err := h.notifications.Mine(c.Request().Context(), c.QueryParams())
	if err != nil {
		return err
	}
	return renderList(c, res, rentalapi.UnwrapNotifications)
}

// UnreadCount returns the number of unread notifications.
//
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  rentalapi.Result
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	res, err := h.notifications.UnreadCount(c.Request().Context())
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// MarkRead marks one notification as read.
//
// @Summary      Mark notification read
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	res, err := h.notifications.MarkRead(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// MarkAllRead marks every notification as read.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  rentalapi.Result
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	res, err := h.notifications.MarkAllRead(c.Request().Context())
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}

// Delete removes a notification.
//
// @Summary      Delete notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  rentalapi.Result
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	res, err := h.notifications.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return renderResult(c, http.StatusOK, res)
}
