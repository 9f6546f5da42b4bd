// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package pocketbase is a small client for the PocketBase REST API.
package pocketbase

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
)

// DefaultTimeout applies when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Client talks to one PocketBase instance with its own auth state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authStore  *AuthStore
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAuthStore sets the auth store, for sharing state between clients.
func WithAuthStore(store *AuthStore) Option {
	return func(c *Client) {
		c.authStore = store
	}
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		authStore:  NewAuthStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the instance URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AuthStore returns the client's auth state.
func (c *Client) AuthStore() *AuthStore {
	return c.authStore
}

// Collection returns the record API of a collection.
func (c *Client) Collection(name string) *RecordService {
	return &RecordService{client: c, collection: name}
}

// FileURL returns the public URL of a record file.
func (c *Client) FileURL(collection, recordID, filename string) string {
	if recordID == "" || filename == "" {
		return ""
	}
	return fmt.Sprintf("%s/api/files/%s/%s/%s",
		c.baseURL, url.PathEscape(collection), url.PathEscape(recordID), url.PathEscape(filename))
}

// FieldError describes why a single field failed validation.
type FieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is a non-2xx response from PocketBase.
type Error struct {
	Data    map[string]FieldError `json:"data"`
	Message string                `json:"message"`
	Status  int                   `json:"status"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("pocketbase: status %d", e.Status)
	}
	return fmt.Sprintf("pocketbase: status %d: %s", e.Status, e.Message)
}

// FieldCode returns the validation code reported for field.
func (e *Error) FieldCode(field string) string {
	return e.Data[field].Code
}

// HasFieldCode reports whether any field failed with code.
func (e *Error) HasFieldCode(code string) bool {
	for _, fe := range e.Data {
		if fe.Code == code {
			return true
		}
	}
	return false
}

// StatusOf returns the HTTP status of a PocketBase error, or 0.
func StatusOf(err error) int {
	var pbErr *Error
	if errors.As(err, &pbErr) {
		return pbErr.Status
	}
	return 0
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	req := request{method: method, path: path, query: query}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return c.send(ctx, req, out)
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// do performs the request and turns error statuses into *Error. On success
// the caller owns the response body.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if token := c.authStore.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() {
			_ = resp.Body.Close()
		}()
		pbErr := &Error{Status: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if len(body) > 0 {
			_ = json.Unmarshal(body, pbErr)
		}
		pbErr.Status = resp.StatusCode
		return nil, pbErr
	}
	return resp, nil
}
