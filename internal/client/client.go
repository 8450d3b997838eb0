// Package client is the HTTP API client used by the mcm-watch terminal
// client and the subscription panel controller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"
)

type Notification struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Subscription struct {
	ID            uint   `json:"id"`
	UserID        uint   `json:"user_id"`
	Type          string `json:"type"`
	Enabled       bool   `json:"enabled"`
	EnableSound   bool   `json:"enable_sound"`
	EnableBrowser bool   `json:"enable_browser"`
	EnableEmail   bool   `json:"enable_email"`
	FCMToken      string `json:"fcm_token"`
}

type User struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Client talks to the MCM Alerts API. The session cookie from Login is held
// in the jar, so one Client is one authenticated session.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)

	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)

	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)

	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// Login authenticates and stores the session cookie for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}

	err := c.do(ctx, http.MethodPost, "/api/sessions", map[string]string{
		"username": username,
		"password": password,
	}, &resp)

	if err != nil {
		return nil, err
	}

	return &resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &resp); err != nil {
		return nil, err
	}

	return &resp.User, nil
}

// Notifications returns the user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	var notifications []Notification

	path := "/api/notifications"

	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	if err := c.do(ctx, http.MethodGet, path, nil, &notifications); err != nil {
		return nil, err
	}

	return notifications, nil
}

// LatestNotification returns the single most recent notification, or nil
// when the user has none.
func (c *Client) LatestNotification(ctx context.Context) (*Notification, error) {
	notifications, err := c.Notifications(ctx, 1)

	if err != nil {
		return nil, err
	}

	if len(notifications) == 0 {
		return nil, nil
	}

	return &notifications[0], nil
}

func (c *Client) TodayCount(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/notifications/count/today", nil, &resp); err != nil {
		return 0, err
	}

	return resp.Count, nil
}

func (c *Client) MarkRead(ctx context.Context, id uint) error {
	path := fmt.Sprintf("/api/notifications/%d/read", id)
	return c.do(ctx, http.MethodPatch, path, nil, nil)
}

// Subscription fetches the user's subscription of the given type; nil when
// none exists yet.
func (c *Client) Subscription(ctx context.Context, subType string) (*Subscription, error) {
	var subscription *Subscription

	if err := c.do(ctx, http.MethodGet, "/api/subscriptions/"+subType, nil, &subscription); err != nil {
		return nil, err
	}

	return subscription, nil
}

// UpsertSubscription persists the full preference set.
func (c *Client) UpsertSubscription(ctx context.Context, sub Subscription) (*Subscription, error) {
	var saved Subscription

	body := map[string]interface{}{
		"type":           sub.Type,
		"enabled":        sub.Enabled,
		"enable_sound":   sub.EnableSound,
		"enable_browser": sub.EnableBrowser,
		"enable_email":   sub.EnableEmail,
		"fcm_token":      sub.FCMToken,
	}

	if err := c.do(ctx, http.MethodPost, "/api/subscriptions", body, &saved); err != nil {
		return nil, err
	}

	return &saved, nil
}

func (c *Client) UpdateToken(ctx context.Context, subType, token string) error {
	return c.do(ctx, http.MethodPost, "/api/subscriptions/token", map[string]string{
		"type":      subType,
		"fcm_token": token,
	}, nil)
}
