package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// NotificationOptions narrows a notification listing.
type NotificationOptions struct {
	Page  int
	Limit int
}

// Notifications lists the current user's notifications, newest first. The
// totals are carried in response headers rather than the body.
func (c *Client) Notifications(ctx context.Context, opts NotificationOptions) (NotificationPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/api/notifications", query, nil)
	if err != nil {
		return NotificationPage{}, err
	}

	resp, err := c.do(req)
	if err != nil {
		return NotificationPage{}, fmt.Errorf("fetching notifications: %w", err)
	}
	defer resp.Body.Close()

	page := NotificationPage{
		Total: headerInt(resp, "X-Total-Count"),
		Page:  headerInt(resp, "X-Page"),
		Limit: headerInt(resp, "X-Limit"),
	}
	if err := json.NewDecoder(resp.Body).Decode(&page.Notifications); err != nil {
		return NotificationPage{}, fmt.Errorf("decoding notifications: %w", err)
	}

	return page, nil
}

// UnreadCount returns the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Unread int `json:"unread"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/notifications/unread_count", nil, nil, &out); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	return out.Unread, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) error {
	path := "/api/notifications/" + url.PathEscape(notificationID) + "/read"
	if err := c.doJSON(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("marking notification %s read: %w", notificationID, err)
	}
	return nil
}

// MarkAllNotificationsRead marks every unread notification as read and
// returns how many were updated.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) (int, error) {
	var out struct {
		Updated int `json:"updated"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/notifications/mark_all_read", nil, nil, &out); err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}
	return out.Updated, nil
}

// DeleteNotification removes a single notification.
func (c *Client) DeleteNotification(ctx context.Context, notificationID string) error {
	path := "/api/notifications/" + url.PathEscape(notificationID)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("deleting notification %s: %w", notificationID, err)
	}
	return nil
}

// ClearNotifications removes all notifications and returns how many were
// deleted.
func (c *Client) ClearNotifications(ctx context.Context) (int, error) {
	var out struct {
		Deleted int `json:"deleted"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/notifications/clear_all", nil, nil, &out); err != nil {
		return 0, fmt.Errorf("clearing notifications: %w", err)
	}
	return out.Deleted, nil
}

func headerInt(resp *http.Response, name string) int {
	n, err := strconv.Atoi(resp.Header.Get(name))
	if err != nil {
		return 0
	}
	return n
}
