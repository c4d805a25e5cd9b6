// Package api is the REST client for the business backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marcus/bizdesk/internal/models"
)

// RequestIDHeader tags every request for log correlation.
const RequestIDHeader = "X-Request-ID"

// Client talks to the backend over JSON/HTTP.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid api url: %q", baseURL)
	}
	c := &Client{
		baseURL:    u,
		token:      strings.TrimSpace(token),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches a collection. The response may be a {results, count} page or
// a bare array.
func (c *Client) List(ctx context.Context, entity string, filter map[string]string) (*models.Page, error) {
	q := url.Values{}
	for k, v := range filter {
		q.Set(k, v)
	}

	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, collectionPath(entity), q, nil, &raw); err != nil {
		return nil, errors.Wrapf(err, "list %s", entity)
	}

	page, err := decodePage(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", entity)
	}
	return page, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, entity, id string) (models.Record, error) {
	var rec models.Record
	if err := c.doJSON(ctx, http.MethodGet, itemPath(entity, id), nil, nil, &rec); err != nil {
		return nil, errors.Wrapf(err, "get %s %s", entity, id)
	}
	return rec, nil
}

// Create posts a new record and returns the stored version.
func (c *Client) Create(ctx context.Context, entity string, payload map[string]any) (models.Record, error) {
	var rec models.Record
	if err := c.doJSON(ctx, http.MethodPost, collectionPath(entity), nil, payload, &rec); err != nil {
		return nil, errors.Wrapf(err, "create %s", entity)
	}
	return rec, nil
}

// Update patches an existing record.
func (c *Client) Update(ctx context.Context, entity, id string, payload map[string]any) (models.Record, error) {
	var rec models.Record
	if err := c.doJSON(ctx, http.MethodPatch, itemPath(entity, id), nil, payload, &rec); err != nil {
		return nil, errors.Wrapf(err, "update %s %s", entity, id)
	}
	return rec, nil
}

// Remove deletes a record.
func (c *Client) Remove(ctx context.Context, entity, id string) error {
	if err := c.doJSON(ctx, http.MethodDelete, itemPath(entity, id), nil, nil, nil); err != nil {
		return errors.Wrapf(err, "delete %s %s", entity, id)
	}
	return nil
}

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/me/", nil, nil, &u); err != nil {
		return nil, errors.Wrap(err, "current user")
	}
	return &u, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/token/", nil, body, &out); err != nil {
		return "", errors.Wrap(err, "login")
	}
	if out.Token == "" {
		return "", errors.New("login: empty token")
	}
	return out.Token, nil
}

func collectionPath(entity string) string {
	return "/api/" + url.PathEscape(entity) + "/"
}

func itemPath(entity, id string) string {
	return "/api/" + url.PathEscape(entity) + "/" + url.PathEscape(id) + "/"
}

func decodePage(raw json.RawMessage) (*models.Page, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []models.Record
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, err
		}
		return &models.Page{Results: results, Count: len(results)}, nil
	}

	var page models.Page
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []models.Record{}
	}
	if page.Count == 0 {
		page.Count = len(page.Results)
	}
	return &page, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ParseError(resp.StatusCode, respBody)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
