package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	maxErrorBody    = 64 * 1024
	maxBody         = 32 << 20
)

// ErrBodyTooLarge is returned when a successful response exceeds the read limit.
var ErrBodyTooLarge = errors.New("response body too large")

// Client issues authenticated requests against the back-office REST API.
type Client interface {
	// Do sends one request and returns the buffered response, or an error for
	// transport failures and non-2xx statuses.
	Do(ctx context.Context, method, path string, opts RequestOptions) (*Response, error)
	// BaseURL returns the configured API root.
	BaseURL() string
}

// TokenSource supplies the bearer credential attached to each request.
// An empty token sends the request without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same credential.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// TokenFunc adapts a function to the TokenSource interface.
type TokenFunc func(ctx context.Context) (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.example.com". Required.
	BaseURL string
	// Tokens provides the bearer credential. Nil sends anonymous requests.
	Tokens TokenSource
	// HTTPClient overrides the transport. Defaults to a new http.Client.
	HTTPClient *http.Client
	// Timeout bounds a whole request. Zero keeps the transport default (none).
	Timeout time.Duration
	// UserAgent is sent when non-empty.
	UserAgent string
	// Logger receives one debug record per request. Defaults to slog.Default().
	Logger *slog.Logger
}

// RequestOptions carries the optional parts of a request.
// Body and Multipart are mutually exclusive; Multipart wins when both are set.
type RequestOptions struct {
	Params    url.Values
	Body      any
	Multipart *Multipart
	Headers   http.Header
}

// Response is a successful, fully read HTTP response.
type Response struct {
	Status    int
	Header    http.Header
	Body      []byte
	RequestID string
}

// Decode unmarshals the response body into v. A body that does not fit v is
// reported as a *ShapeError tagged with op.
func (r *Response) Decode(op string, v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return &ShapeError{Op: op, Reason: "cannot decode body", Body: r.Body, Err: err}
	}
	return nil
}

type client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// New creates a Client from cfg.
//
// The base URL is joined with each request path, so "https://api.example.com/"
// and "https://api.example.com" behave the same. Every request carries
// "Accept: application/json", a fresh X-Request-ID and, when the token source
// returns one, "Authorization: Bearer <token>". Nothing is retried.
//
// Example:
//
//	c, err := client.New(client.Config{
//	    BaseURL: "https://api.example.com",
//	    Tokens:  client.StaticToken(os.Getenv("MOBCASH_TOKEN")),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := c.Do(ctx, http.MethodGet, "/mobcash/plateform", client.RequestOptions{})
func New(cfg Config) (Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		copied := *httpClient
		copied.Timeout = cfg.Timeout
		httpClient = &copied
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &client{
		baseURL:    base,
		tokens:     cfg.Tokens,
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}, nil
}

func (c *client) BaseURL() string {
	return c.baseURL
}

func (c *client) Do(ctx context.Context, method, path string, opts RequestOptions) (*Response, error) {
	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	requestID := req.Header.Get(headerRequestID)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	failed := resp.StatusCode < 200 || resp.StatusCode > 299
	limit := int64(maxBody)
	if failed {
		limit = maxErrorBody
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if failed {
		if int64(len(body)) > limit {
			body = body[:limit]
		}
		return nil, &HTTPError{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   body,
			Detail: detailFromBody(body),
		}
	}
	if int64(len(body)) > limit {
		return nil, &TransportError{Method: method, Path: path, Err: ErrBodyTooLarge}
	}

	return &Response{
		Status:    resp.StatusCode,
		Header:    resp.Header,
		Body:      body,
		RequestID: requestID,
	}, nil
}

func (c *client) newRequest(ctx context.Context, method, path string, opts RequestOptions) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(opts.Params) > 0 {
		target += "?" + opts.Params.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case opts.Multipart != nil:
		buf, ct, err := opts.Multipart.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case opts.Body != nil:
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for key, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			if err := CheckExpiry(token, time.Now()); err != nil {
				return nil, err
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}
