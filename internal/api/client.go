package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnauthorized matches any *Error with status 401.
var ErrUnauthorized = errors.New("not authenticated")

// Error is a non-2xx response. Message is the backend's optional
// "message" field; it is the only part of an error body the client reads.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage returns the server-supplied message carried by err, or
// fallback when there is none.
func UserMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Jar     http.CookieJar
	Timeout time.Duration
	Logger  *zap.Logger
}

// Client calls the chat backend's REST endpoints. Authentication rides on
// the cookie jar; the client never looks inside the session cookie.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger
}

// New creates a client for the backend at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", opts.BaseURL)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base: base,
		http: &http.Client{
			Jar:     opts.Jar,
			Timeout: opts.Timeout,
		},
		logger: logger,
	}, nil
}

// BaseURL returns the server root the client talks to.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// CheckSession asks the backend who the cookie belongs to.
// A missing or expired session yields an error matching ErrUnauthorized.
func (c *Client) CheckSession(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Signup creates an account and starts a session for it.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout ends the session on the server.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// ListUsers returns every user the session can talk to.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/message/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListMessages returns the full history with partnerID, oldest first.
func (c *Client) ListMessages(ctx context.Context, partnerID string) ([]Message, error) {
	var msgs []Message
	if err := c.do(ctx, http.MethodGet, "/api/message/"+url.PathEscape(partnerID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a message to partnerID and returns it as the server stored it.
func (c *Client) SendMessage(ctx context.Context, partnerID string, req SendRequest) (Message, error) {
	var m Message
	err := c.do(ctx, http.MethodPost, "/api/message/send/"+url.PathEscape(partnerID), req, &m)
	return m, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request done",
		zap.String("method", method), zap.String("path", path),
		zap.String("request_id", reqID), zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
