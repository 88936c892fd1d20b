package backend

import (
	"context"
	"net/http"

	"eara_connect_portal/internal/domain/notification"
)

func (c *Client) Notifications(ctx context.Context, userID int64) ([]notification.Notification, error) {
	var out []notification.Notification
	if err := c.do(ctx, http.MethodGet, idPath("/notifications/user/%d", userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UnreadNotifications(ctx context.Context, userID int64) ([]notification.Notification, error) {
	var out []notification.Notification
	if err := c.do(ctx, http.MethodGet, idPath("/notifications/user/%d/unread", userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, idPath("/notifications/user/%d/unread-count", userID), nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, idPath("/notifications/%d/read", id), nil, nil, nil)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodPut, idPath("/notifications/user/%d/mark-all-read", userID), nil, nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/notifications/%d", id), nil, nil, nil)
}
