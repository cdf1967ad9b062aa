// Package client is the HTTP client for the messaging API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matheus3301/fleetchat/internal/model"
)

// DefaultTimeout bounds every request so a send can never stay pending forever.
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is kept in APIError.
const maxErrorBody = 512

// APIError is returned for any non-2xx response or an explicit success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("messaging api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("messaging api: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the messaging HTTP API on behalf of one user.
type Client struct {
	baseURL string
	userID  string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// New creates a client for baseURL acting as userID.
func New(baseURL, userID string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// UserID returns the user the client acts as.
func (c *Client) UserID() string { return c.userID }

// envelope is the {success, data} wrapper used by most endpoints.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userID != "" {
		req.Header.Set("X-User-Id", c.userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	if out == nil {
		return nil
	}
	return decodeData(resp.StatusCode, data, out)
}

// decodeData unwraps {success, data} when present and decodes the bare body otherwise.
func decodeData(status int, data []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Success != nil && !*env.Success {
			msg := env.Error
			if msg == "" {
				msg = env.Message
			}
			return &APIError{StatusCode: status, Message: msg}
		}
		if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
			data = env.Data
		}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Error != "" {
			return env.Error
		}
		if env.Message != "" {
			return env.Message
		}
	}
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

// SendRequest is the body of POST /messaging/send.
type SendRequest struct {
	Content          string   `json:"content"`
	RecipientUserIDs []string `json:"recipientUserIds"`
	RecipientEmails  []string `json:"recipientEmails"`
	ConversationID   string   `json:"conversationId"`
	GroupID          string   `json:"groupId,omitempty"`
}

// SendResult is the server's acknowledgement of a sent message.
type SendResult struct {
	MessageID string          `json:"messageId"`
	SentAt    model.Timestamp `json:"sentAt"`
}

// Send posts a message. A response without a message id is an error.
func (c *Client) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if req.RecipientUserIDs == nil {
		req.RecipientUserIDs = []string{}
	}
	if req.RecipientEmails == nil {
		req.RecipientEmails = []string{}
	}
	var res SendResult
	if err := c.do(ctx, http.MethodPost, "/messaging/send", req, &res); err != nil {
		return SendResult{}, err
	}
	if res.MessageID == "" {
		return SendResult{}, &APIError{StatusCode: http.StatusOK, Message: "response carried no messageId"}
	}
	return res, nil
}

type messagesPayload struct {
	Messages []model.Record `json:"messages"`
}

// Pull fetches up to limit records from the user's inbox.
func (c *Client) Pull(ctx context.Context, limit int) ([]model.Record, error) {
	var out messagesPayload
	if err := c.do(ctx, http.MethodPost, "/messaging/pull", map[string]int{"limit": limit}, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

type historyRequest struct {
	UserID   string `json:"userId"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

// History fetches one page of a conversation's prior messages.
func (c *Client) History(ctx context.Context, conversationID string, page, pageSize int) ([]model.Record, error) {
	path := "/messaging/conversation/" + url.PathEscape(conversationID) + "/history"
	var out messagesPayload
	body := historyRequest{UserID: c.userID, Page: page, PageSize: pageSize}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Group fetches group metadata and its member list.
func (c *Client) Group(ctx context.Context, groupID string) (model.Group, error) {
	path := "/UserGroups/" + url.PathEscape(groupID) + "?userId=" + url.QueryEscape(c.userID)
	var g model.Group
	if err := c.do(ctx, http.MethodGet, path, nil, &g); err != nil {
		return model.Group{}, err
	}
	return g, nil
}

// Contacts fetches the full contact directory.
func (c *Client) Contacts(ctx context.Context) ([]model.Contact, error) {
	var out []model.Contact
	if err := c.do(ctx, http.MethodGet, "/contacts/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
