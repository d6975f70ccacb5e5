package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nodalcv/server/pkg/identity"
)

const (
	apiKeyHeader = "X-Api-Key"
	maxErrorBody = 512
)

// ErrNoSession is returned when an operation needs a signed-in user.
var ErrNoSession = errors.New("workflow: no signed-in user")

// HTTPError is a non-2xx answer from the workflow backend.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("workflow http %d", e.Status)
	}
	return fmt.Sprintf("workflow http %d: %s", e.Status, e.Body)
}

// Client talks to the webhook endpoints of the workflow backend. Payloads
// are returned decoded but otherwise untouched; callers normalize them.
type Client struct {
	BaseURL string
	APIKey  string
	httpDo  *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		httpDo:  &http.Client{Timeout: timeout},
	}
}

// ParseCV uploads a document for structured extraction.
func (c *Client) ParseCV(ctx context.Context, sess identity.Session, filename string, content io.Reader) (any, error) {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return nil, ErrNoSession
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("email", email); err != nil {
		return nil, err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	body, _, err := c.do(ctx, sess, http.MethodPost, "/webhook/cv/parse", nil, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return decode(body), nil
}

// ListProfiles returns every stored record of the signed-in user.
func (c *Client) ListProfiles(ctx context.Context, sess identity.Session) (any, error) {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return nil, ErrNoSession
	}
	return c.getJSON(ctx, sess, "/webhook/cv", url.Values{"email": {email}})
}

// PublicProfile fetches a published record by slug; no user is required.
func (c *Client) PublicProfile(ctx context.Context, slug string) (any, error) {
	return c.getJSON(ctx, identity.Anonymous(), "/webhook/cv/public", url.Values{"slug": {slug}})
}

// SaveProfile writes a record wholesale. The answer carries at least a slug.
func (c *Client) SaveProfile(ctx context.Context, sess identity.Session, rec any) (any, error) {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return nil, ErrNoSession
	}
	return c.postJSON(ctx, sess, "/webhook/cv/save", SaveRequest{Email: email, CV: rec})
}

func (c *Client) DeleteProfile(ctx context.Context, sess identity.Session, cvName string) error {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return ErrNoSession
	}
	_, err := c.postJSON(ctx, sess, "/webhook/cv/delete", DeleteRequest{Email: email, CVName: cvName})
	return err
}

// UpdateSetting writes a single field such as visibility or availability.
func (c *Client) UpdateSetting(ctx context.Context, sess identity.Session, req SettingRequest) error {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return ErrNoSession
	}
	req.Email = email
	_, err := c.postJSON(ctx, sess, "/webhook/cv/settings", req)
	return err
}

func (c *Client) OptimizeDescription(ctx context.Context, sess identity.Session, req DescriptionRequest) (any, error) {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return nil, ErrNoSession
	}
	req.Email = email
	return c.postJSON(ctx, sess, "/webhook/optimize/description", req)
}

func (c *Client) OptimizeForOffer(ctx context.Context, sess identity.Session, req OfferRequest) (any, error) {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return nil, ErrNoSession
	}
	req.Email = email
	return c.postJSON(ctx, sess, "/webhook/optimize/offer", req)
}

func (c *Client) CoverLetter(ctx context.Context, sess identity.Session, req CoverLetterRequest) (any, error) {
	email, ok := sess.CurrentUserEmail()
	if !ok {
		return nil, ErrNoSession
	}
	req.Email = email
	return c.postJSON(ctx, sess, "/webhook/optimize/cover-letter", req)
}

// Analytics returns the raw event list of a published profile.
func (c *Client) Analytics(ctx context.Context, sess identity.Session, slug string) (any, error) {
	return c.getJSON(ctx, sess, "/webhook/analytics", url.Values{"slug": {slug}})
}

// TrackEvent records a visit or keyword hit on a public profile.
func (c *Client) TrackEvent(ctx context.Context, ev TrackRequest) error {
	_, err := c.postJSON(ctx, identity.Anonymous(), "/webhook/analytics/track", ev)
	return err
}

// ExportPDF returns the rendered document and its content type.
func (c *Client) ExportPDF(ctx context.Context, sess identity.Session, slug string) ([]byte, string, error) {
	body, header, err := c.do(ctx, sess, http.MethodGet, "/webhook/cv/pdf", url.Values{"slug": {slug}}, nil, "")
	if err != nil {
		return nil, "", err
	}
	ct := header.Get("Content-Type")
	if ct == "" {
		ct = "application/pdf"
	}
	return body, ct, nil
}

// Ping reports whether the backend answers at all. Any status below 500
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpDo.Do(req)
	if err != nil {
		return fmt.Errorf("workflow unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return &HTTPError{Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, sess identity.Session, path string, q url.Values) (any, error) {
	body, _, err := c.do(ctx, sess, http.MethodGet, path, q, nil, "")
	if err != nil {
		return nil, err
	}
	return decode(body), nil
}

func (c *Client) postJSON(ctx context.Context, sess identity.Session, path string, payload any) (any, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	body, _, err := c.do(ctx, sess, http.MethodPost, path, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return nil, err
	}
	return decode(body), nil
}

func (c *Client) do(ctx context.Context, sess identity.Session, method, path string, q url.Values, body io.Reader, contentType string) ([]byte, http.Header, error) {
	endpoint := c.BaseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set(apiKeyHeader, c.APIKey)
	}
	if sess != nil {
		if tok, err := sess.Token(ctx); err == nil {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpDo.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &HTTPError{Status: resp.StatusCode, Body: clip(strings.TrimSpace(string(data)), maxErrorBody)}
	}
	return data, resp.Header, nil
}

// clip cuts s to at most n bytes without splitting a UTF-8 sequence.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// decode turns a response body into a generic value. Non-JSON answers are
// kept as text, an empty body becomes nil.
func decode(body []byte) any {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(body, &out); err != nil {
		return string(body)
	}
	return out
}
