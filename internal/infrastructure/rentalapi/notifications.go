package rentalapi

import (
	"context"
	"net/url"
)

// NotificationAPI covers user and admin notifications.
type NotificationAPI struct{ c *Client }

// NotificationInput is the admin broadcast payload.
type NotificationInput struct {
	UserID  string `json:"userId,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message" validate:"required"`
	Type    string `json:"type,omitempty"`
}

func (a *NotificationAPI) Mine(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/notifications", params, "Failed to fetch notifications.")
}

func (a *NotificationAPI) MarkRead(ctx context.Context, id string) (*Result, error) {
	return a.c.patch(ctx, resource("/notifications/%s/read", id), nil, "Failed to mark notification as read.")
}

func (a *NotificationAPI) MarkAllRead(ctx context.Context) (*Result, error) {
	return a.c.patch(ctx, "/notifications/read-all", nil, "Failed to mark all notifications as read.")
}

func (a *NotificationAPI) Delete(ctx context.Context, id string) (*Result, error) {
	return a.c.delete(ctx, resource("/notifications/%s", id), nil, "Failed to delete notification.")
}

func (a *NotificationAPI) UnreadCount(ctx context.Context) (*Result, error) {
	return a.c.get(ctx, "/notifications/unread-count", nil, "Failed to fetch unread count.")
}

func (a *NotificationAPI) Create(ctx context.Context, n NotificationInput) (*Result, error) {
	return a.c.post(ctx, "/admin/notifications", n, "Failed to create notification.")
}

func (a *NotificationAPI) AdminList(ctx context.Context, params url.Values) (*Result, error) {
	return a.c.get(ctx, "/admin/notifications", params, "Failed to fetch admin notifications.")
}
