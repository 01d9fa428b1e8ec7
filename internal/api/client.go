// Package api is the client for the finance tracker REST API.
//
// Every call attaches the session's bearer token when there is one. A 401
// on an authenticated call is reported as ErrUnauthenticated; any other
// non-2xx status is a *RequestError carrying the server's message. Success
// bodies are decoded into explicit records and checked before they are
// handed out, so callers never see half-populated values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fintrack/internal/log"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 15 * time.Second

	maxBodyBytes = 4 << 20
)

// TokenSource supplies the bearer token. The session store satisfies it.
type TokenSource interface {
	Token() (string, bool)
}

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	tokens  TokenSource
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The configured timeout still applies.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		tokens:  tokens,
		logger:  log.New(log.Config{Component: log.ComponentAPI, Handler: slog.Default().Handler()}),
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.http
	hc.Timeout = c.timeout
	c.http = &hc
	return c
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
	// public marks login/register, where a 401 means bad credentials and
	// not an expired session.
	public   bool
	what     string
	fallback string
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", cl.what, err)
		}
		body = bytes.NewReader(b)
	}

	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", cl.what, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "API request failed",
			log.FieldMethod, cl.method,
			log.FieldPath, cl.path,
			log.FieldError, err.Error())
		return &RequestError{Message: cl.fallback, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger.DebugContext(ctx, "API request",
		log.FieldMethod, cl.method,
		log.FieldPath, cl.path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())
	if err != nil {
		return &RequestError{Status: resp.StatusCode, Message: cl.fallback, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && !cl.public {
		return ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RequestError{Status: resp.StatusCode, Message: serverMessage(raw, cl.fallback)}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return malformed(cl.what, "empty body")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &MalformedDataError{What: cl.what, Err: err}
	}
	return nil
}

func resourcePath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}
