// Package api wraps the Clockify REST API: workspace-scoped paths, pagination,
// and a single bounded retry on rate-limit responses.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
)

// Pagination limits from the Clockify API documentation.
const (
	DefaultPageSize = 50
	MaxPageSize     = 5000
)

const defaultRetryDelay = time.Second

type ClientOptions struct {
	// https://api.clockify.me/api/v1
	BaseURL     string
	APIKey      string
	WorkspaceID string
	Logger      *slog.Logger

	// RetryDelay is the fixed backoff before the single rate-limit retry.
	RetryDelay time.Duration

	Transport *http.Client
}

type Client struct {
	opts   *ClientOptions
	logger *slog.Logger
}

// Error is a non-2xx response from the vendor API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("clockify api: status %d: %s", e.StatusCode, e.Message)
}

// Workspace is the minimal shape returned by GET /workspaces/{id}.
type Workspace struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewClient(opts *ClientOptions) *Client {
	if opts.Transport == nil {
		opts.Transport = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.clockify.me/api/v1"
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{opts: opts, logger: logger}
}

func (c *Client) WorkspaceID() string { return c.opts.WorkspaceID }

// WorkspacePath prefixes a path with the configured workspace scope.
func (c *Client) WorkspacePath(path string) string {
	return "/workspaces/" + c.opts.WorkspaceID + path
}

func (c *Client) Get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	res, err := c.send(ctx, method, path, params, payload)
	if err != nil {
		return err
	}

	if res.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
		c.logger.Warn("rate limited, retrying once",
			slog.String("method", method), slog.String("path", path))

		select {
		case <-time.After(c.opts.RetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}

		res, err = c.send(ctx, method, path, params, payload)
		if err != nil {
			return err
		}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.apiError(res)
	}

	c.logger.Debug("api request",
		slog.String("method", method), slog.String("path", path), slog.Int("status", res.StatusCode))

	if out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, params url.Values, payload []byte) (*http.Response, error) {
	u := c.opts.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.opts.Transport.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return res, nil
}

func (c *Client) apiError(res *http.Response) error {
	raw, _ := io.ReadAll(res.Body)

	var apiMsg struct {
		Message string `json:"message"`
	}
	message := string(raw)
	if err := sonic.Unmarshal(raw, &apiMsg); err == nil && apiMsg.Message != "" {
		message = apiMsg.Message
	}
	return &Error{StatusCode: res.StatusCode, Message: message}
}

// GetPaginated fetches every page of a list endpoint at the maximum page size,
// stopping at the first short or empty page. Pages are concatenated in server
// order. Any page error fails the whole fetch; no partial result is returned.
func GetPaginated[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	pageSize := MaxPageSize
	var all []T

	for page := 1; ; page++ {
		pageParams := url.Values{}
		for key, values := range params {
			pageParams[key] = values
		}
		pageParams.Set("page", strconv.Itoa(page))
		pageParams.Set("page-size", strconv.Itoa(pageSize))

		var items []T
		if err := c.Get(ctx, path, pageParams, &items); err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", page, path, err)
		}

		all = append(all, items...)
		c.logger.Debug("fetched page",
			slog.String("path", path), slog.Int("page", page), slog.Int("items", len(items)))

		if len(items) < pageSize {
			return all, nil
		}
	}
}

// ValidateConnection checks credentials and workspace access up front so an
// operation fails before any partial work happens.
func (c *Client) ValidateConnection(ctx context.Context) (*Workspace, error) {
	var ws Workspace
	if err := c.Get(ctx, "/workspaces/"+c.opts.WorkspaceID, nil, &ws); err != nil {
		return nil, fmt.Errorf("validate connection: %w", err)
	}
	return &ws, nil
}
