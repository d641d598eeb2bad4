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

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/sussurros/journalterm/domain"
)

type authMode int

const (
	authNone     authMode = iota
	authOptional          // Send the token when logged in
	authRequired          // Fail with ErrUnauthorized when logged out
)

// Client is a thin HTTP wrapper for the journal API.
// It handles base URL construction and bearer token injection.
type Client struct {
	baseURL string
	tokens  oauth2.TokenSource
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a journal API client. tokens may be nil for an
// anonymous client.
func NewClient(baseURL string, tokens oauth2.TokenSource, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 20 * time.Second},
		log:     log,
	}
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// absolute resolves a server-relative address, such as a media file path,
// against the API origin.
func (c *Client) absolute(ref string) string {
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // Server-provided message, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API %s %s returned %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("API %s %s returned %d", e.Method, e.Path, e.Status)
}

// ServerMessage returns the message the server attached to the error.
func (e *APIError) ServerMessage() string { return e.Message }

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func (c *Client) get(ctx context.Context, path string, mode authMode) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, mode)
}

func (c *Client) post(ctx context.Context, path string, body any, mode authMode) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body, mode)
}

func (c *Client) do(ctx context.Context, method, path string, body any, mode authMode) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req, mode); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Debug("api error", zap.String("method", method), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: serverMessage(data)}
	}

	return data, nil
}

func (c *Client) authorize(req *http.Request, mode authMode) error {
	if mode == authNone {
		return nil
	}
	if c.tokens == nil {
		if mode == authRequired {
			return fmt.Errorf("auth: %w", domain.ErrUnauthorized)
		}
		return nil
	}
	tok, err := c.tokens.Token()
	if err != nil {
		if mode == authRequired {
			return fmt.Errorf("auth: %w", err)
		}
		return nil
	}
	tok.SetAuthHeader(req)
	return nil
}

// serverMessage extracts a human-readable message from an error body.
func serverMessage(data []byte) string {
	var body struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	for _, s := range []string{body.Detail, body.Message, body.Error} {
		if s = strings.TrimSpace(s); s != "" {
			return sanitizeForTerminal(s)
		}
	}
	return ""
}
