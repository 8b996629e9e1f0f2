// Package client talks to the marketplace REST backend.
package client

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"craftmart/internal/domain"
)

// TokenSource yields the bearer token of the current session
type TokenSource interface {
	Token() (string, error)
}

// Client is safe for concurrent use. It never retries: a failed request is
// reported and the caller decides whether to resubmit.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
	logger  *zap.Logger
}

type Option func(*Client)

// WithHTTPClient uses h as is; nil keeps the default client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}
func WithTokenSource(ts TokenSource) Option { return func(c *Client) { c.tokens = ts } }
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
// WithTimeout bounds every request through the request context, so a
// client passed in with WithHTTPClient is never modified
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

const defaultTimeout = 15 * time.Second

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: bad base URL %q", domain.ErrInvalidInput, baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   io.Reader
	ctype  string
	id     int64
	auth   bool // fail with ErrUnauthenticated when no token is available
	effect bool // GET with side effects: never cacheable
}

func (c *Client) jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return bytes.NewReader(b), nil
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	fail := func(kind error, msg string) error {
		return &domain.OpError{Op: cl.op, ID: cl.id, Message: msg, Err: kind}
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.base.JoinPath(cl.path)
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), cl.body)
	if err != nil {
		return fail(domain.ErrInvalidInput, err.Error())
	}

	if c.tokens != nil {
		tok, err := c.tokens.Token()
		switch {
		case err == nil:
			req.Header.Set("Authorization", "Bearer "+tok)
		case cl.auth:
			return fail(domain.ErrUnauthenticated, "")
		}
	} else if cl.auth {
		return fail(domain.ErrUnauthenticated, "")
	}

	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	req.Header.Set("Accept", "application/json")
	if cl.ctype != "" {
		req.Header.Set("Content-Type", cl.ctype)
	}
	if cl.effect {
		req.Header.Set("Cache-Control", "no-store, no-cache")
		req.Header.Set("Pragma", "no-cache")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("op", cl.op),
			zap.String("request_id", reqID),
			zap.Error(err))
		return fail(domain.ErrNetworkFailure, err.Error())
	}
	defer resp.Body.Close()

	c.logger.Debug("request done",
		zap.String("op", cl.op),
		zap.String("method", cl.method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", reqID),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fail(domain.ErrUnauthenticated, msg)
		case http.StatusNotFound:
			return fail(domain.ErrNotFound, msg)
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			return fail(domain.ErrSubmissionRejected, msg)
		default:
			return fail(domain.ErrNetworkFailure, fmt.Sprintf("HTTP %d %s", resp.StatusCode, msg))
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fail(domain.ErrNetworkFailure, "empty response")
		}
		return fail(domain.ErrNetworkFailure, "malformed response: "+err.Error())
	}
	return nil
}

// errorMessage pulls "error" or "message" out of an error body
func errorMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(b, &body) == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(b))
}
