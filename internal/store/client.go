// Package store implements a typed HTTP client for a PostgREST-style
// tabular data store. Rows are addressed by resource path (/notes, /tags,
// /note_tags, /links) and filtered with "operator.value" query parameters
// (id=eq.<id>, title=ilike.%term%, or=(a,b)).
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/zettel/internal/apperr"
)

// EmptyList is the sentinel returned for empty 200/201 bodies. The store
// answers writes with an empty body unless asked for the representation,
// so callers must treat this as "succeeded, no rows returned".
var EmptyList = json.RawMessage("[]")

// Client issues single-shot requests against the store. It holds no state
// beyond connection reuse in the underlying http.Client, so it is safe for
// concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger
}

// Config holds the settings for a store client.
type Config struct {
	// URL is the project base URL; the REST prefix is appended if missing.
	URL string
	// APIKey is sent as both the apikey header and the bearer credential.
	APIKey string
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
	// HTTPClient overrides the default client (used by tests).
	HTTPClient *http.Client
}

// New creates a store client.
func New(cfg Config, logger *slog.Logger) *Client {
	base := strings.TrimRight(cfg.URL, "/")
	if !strings.HasSuffix(base, "/rest/v1") {
		base += "/rest/v1"
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: base, apiKey: cfg.APIKey, httpc: httpc, logger: logger}
}

// Get fetches rows matching params.
func (c *Client) Get(ctx context.Context, resource string, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, resource, nil, params)
}

// Post inserts rows. The response carries the created representation when
// the store honours the Prefer header, otherwise the empty-list sentinel.
func (c *Client) Post(ctx context.Context, resource string, body any, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, resource, body, params)
}

// Patch updates rows matching params.
func (c *Client) Patch(ctx context.Context, resource string, body any, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPatch, resource, body, params)
}

// Delete removes rows matching params.
func (c *Client) Delete(ctx context.Context, resource string, params url.Values) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, resource, nil, params)
}

func (c *Client) do(ctx context.Context, method, resource string, body any, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + resource
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperr.Storef(0, "encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, apperr.Storef(0, "build request: %v", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	c.logger.Debug("store request", slog.String("method", method), slog.String("resource", resource))

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Error("store request failed", slog.String("method", method),
			slog.String("resource", resource), slog.String("error", err.Error()))
		return nil, apperr.Storef(0, "store request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Storef(0, "read response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if len(bytes.TrimSpace(raw)) == 0 {
			return EmptyList, nil
		}
		if !json.Valid(raw) {
			c.logger.Warn("store returned non-JSON body", slog.Int("status", resp.StatusCode))
			return EmptyList, nil
		}
		return json.RawMessage(raw), nil
	default:
		msg := storeErrorMessage(raw)
		c.logger.Error("store request rejected", slog.String("method", method),
			slog.String("resource", resource), slog.Int("status", resp.StatusCode),
			slog.String("message", msg))
		if msg == "" {
			return nil, apperr.Storef(resp.StatusCode, "store returned HTTP %d", resp.StatusCode)
		}
		return nil, apperr.Storef(resp.StatusCode, "store returned HTTP %d: %s", resp.StatusCode, msg)
	}
}

// storeErrorMessage extracts the store's message field from an error body.
func storeErrorMessage(raw []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(raw))
}
