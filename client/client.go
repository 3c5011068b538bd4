// Package client talks to the document backend's REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/congvan/types"
)

// DebugLevelHeader is sent with every request
const DebugLevelHeader = "X-Debug-Level"

// DefaultDebugLevel is the header value the backend expects from the desk
const DefaultDebugLevel = "minimal"

// Client is a backend API client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	debugLevel string
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDebugLevel overrides the X-Debug-Level header value
func WithDebugLevel(level string) Option {
	return func(c *Client) {
		if level != "" {
			c.debugLevel = level
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		debugLevel: DefaultDebugLevel,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// ListDocuments fetches one page of a register. page is 1-based.
func (c *Client) ListDocuments(ctx context.Context, t types.DocumentType, page, pageSize int) (*types.ListResult, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	env, err := c.do(ctx, http.MethodGet, c.endpoint(t.Resource()), q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s documents: %w", t, err)
	}
	return types.DecodeListResult(env.Data)
}

// SearchDocuments runs a search against the register chosen by
// params.DocumentType. page is 1-based.
func (c *Client) SearchDocuments(ctx context.Context, params types.SearchParams, page, pageSize int) (*types.ListResult, error) {
	if !params.DocumentType.Valid() {
		return nil, fmt.Errorf("failed to search: %w: %q", types.ErrUnknownDocumentType, params.DocumentType)
	}
	q := params.Values()
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))

	env, err := c.do(ctx, http.MethodGet, c.endpoint(params.DocumentType.Resource(), "search"), q, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s documents: %w", params.DocumentType, err)
	}
	return types.DecodeListResult(env.Data)
}

// UpdateDocument patches the document stored under number
func (c *Client) UpdateDocument(ctx context.Context, t types.DocumentType, number types.Code, body map[string]any) error {
	if number == "" {
		return fmt.Errorf("failed to update %s document: empty document number", t)
	}
	if _, err := c.do(ctx, http.MethodPatch, c.endpoint(t.Resource(), number.String()), nil, body); err != nil {
		return fmt.Errorf("failed to update %s document %s: %w", t, number, err)
	}
	return nil
}

// UpdateStatus moves a document to a new status. Status-only updates of
// incoming documents use the dedicated status endpoint; everything else
// patches the document itself.
func (c *Client) UpdateStatus(ctx context.Context, t types.DocumentType, number types.Code, update types.StatusUpdate) error {
	if number == "" {
		return fmt.Errorf("failed to update %s document status: empty document number", t)
	}
	path := c.endpoint(t.Resource(), number.String())
	if t == types.Incoming && update.StatusOnly() {
		path = c.endpoint(t.Resource(), number.String(), "status")
	}
	if _, err := c.do(ctx, http.MethodPatch, path, nil, update.Body()); err != nil {
		return fmt.Errorf("failed to set %s document %s to %s: %w", t, number, update.Status, err)
	}
	return nil
}

// CreateDocument registers a new document. The backend assigns the id;
// the created record is returned when the response carries it.
func (c *Client) CreateDocument(ctx context.Context, t types.DocumentType, draft types.Draft) (*types.Document, error) {
	env, err := c.do(ctx, http.MethodPost, c.endpoint(t.Resource()), nil, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s document: %w", t, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, nil
	}
	var created struct {
		Document *types.Document `json:"document"`
	}
	if err := json.Unmarshal(env.Data, &created); err == nil && created.Document != nil {
		return created.Document, nil
	}
	var doc types.Document
	if err := json.Unmarshal(env.Data, &doc); err != nil || doc.ID == "" {
		return nil, nil
	}
	return &doc, nil
}

// DownloadAttachment streams a stored attachment. The caller must close
// the returned reader.
func (c *Client) DownloadAttachment(ctx context.Context, t types.DocumentType, filename string) (io.ReadCloser, error) {
	if filename == "" {
		return nil, fmt.Errorf("failed to download attachment: empty filename")
	}
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(t.Resource(), "attachments", filename), nil, nil)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With("request_id", uuid.NewString(), "method", req.Method, "url", req.URL.String())
	logger.Debug("downloading attachment")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("attachment download failed", "error", err)
		return nil, fmt.Errorf("failed to download %s: %w", filename, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := errorFromBody(resp.StatusCode, body)
		logger.Warn("attachment download rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("failed to download %s: %w", filename, apiErr)
	}
	return resp.Body, nil
}

func (c *Client) endpoint(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(DebugLevelHeader, c.debugLevel)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do sends a JSON request and decodes the response envelope. In-band
// validation failures come back as *ValidationError, error statuses as
// *APIError.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) (*types.Envelope, error) {
	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return nil, err
	}
	logger := c.logger.With("request_id", uuid.NewString(), "method", method, "url", req.URL.String())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("request failed", "error", err, "duration", time.Since(start))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	logger.Debug("request completed", "status", resp.StatusCode, "bytes", len(raw), "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromBody(resp.StatusCode, raw)
	}

	var env types.Envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	if env.ValidationFailed() {
		logger.Info("backend rejected body", "fields", env.Errors.Fields())
		return nil, &ValidationError{Fields: env.Errors}
	}
	return &env, nil
}

func errorFromBody(status int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var env types.Envelope
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Message = env.Message
		apiErr.Fields = env.Errors
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
