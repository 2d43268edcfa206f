// Package api is the request builder for the food ordering backend.
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
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/example/foodapp/internal/dto"
)

const (
	defaultTimeout            = 15 * time.Second
	defaultBreakerMaxFailures = 5
	defaultBreakerOpenTimeout = 30 * time.Second

	// IdempotencyHeader deduplicates order creation on the backend.
	IdempotencyHeader = "Idempotency-Key"

	unavailableMessage = "Service is temporarily unavailable. Please try again."
)

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Options configure a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	Burst     int

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Client sends JSON requests to the backend.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*response]
	log     *zap.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

type request struct {
	method         string
	path           string
	query          url.Values
	body           any
	auth           bool
	idempotencyKey string
	// fallback is the message used when the backend gives none.
	fallback string
}

type response struct {
	status int
	body   []byte
}

// serverFault marks a 5xx so the breaker counts it while the body is kept.
type serverFault struct{ resp *response }

func (f *serverFault) Error() string { return fmt.Sprintf("server status %d", f.resp.status) }

// callerAbort marks a request the caller cancelled or timed out, so the
// breaker does not count it against the backend.
type callerAbort struct{ err error }

func (a *callerAbort) Error() string { return a.err.Error() }
func (a *callerAbort) Unwrap() error { return a.err }

func breakerSuccess(err error) bool {
	var abort *callerAbort
	return err == nil || errors.As(err, &abort)
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	maxFailures := opts.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	openTimeout := opts.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = defaultBreakerOpenTimeout
	}

	c := &Client{
		base:    base,
		http:    httpClient,
		limiter: limiter,
		log:     log.Named("api"),
	}
	c.breaker = gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        "backend",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c, nil
}

// SetTokenSource installs the token provider used for authenticated calls.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.base.String() }

// do sends req and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &Error{Kind: KindTransport, Message: req.fallback, Err: err}
		}
	}

	started := time.Now()
	resp, err := c.breaker.Execute(func() (*response, error) {
		resp, err := c.send(ctx, req)
		if err != nil && ctx.Err() != nil {
			return nil, &callerAbort{err: err}
		}
		return resp, err
	})

	var fault *serverFault
	switch {
	case errors.As(err, &fault):
		resp = fault.resp
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.log.Warn("request short-circuited", zap.String("method", req.method), zap.String("path", req.path))
		return &Error{Kind: KindTransport, Message: unavailableMessage, Err: err}
	case err != nil:
		c.log.Warn("request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err))
		return &Error{Kind: KindTransport, Message: req.fallback, Err: err}
	}

	c.log.Debug("request",
		zap.String("method", req.method),
		zap.String("path", req.path),
		zap.Int("status", resp.status),
		zap.Duration("duration", time.Since(started)))

	if resp.status < 200 || resp.status >= 300 {
		apiErr := decodeError(resp, req.fallback)
		c.log.Warn("backend rejected request",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Int("status", resp.status),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.status, Message: req.fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) send(ctx context.Context, req request) (*response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	resp := &response{status: res.StatusCode, body: body}
	if res.StatusCode >= 500 {
		return nil, &serverFault{resp: resp}
	}
	return resp, nil
}

func (c *Client) build(ctx context.Context, req request) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(req.path, "/")
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.auth {
		if token := c.token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if req.idempotencyKey != "" {
		httpReq.Header.Set(IdempotencyHeader, req.idempotencyKey)
	}
	return httpReq, nil
}

func decodeError(resp *response, fallback string) *Error {
	apiErr := &Error{Kind: KindServer, Status: resp.status, Message: fallback}
	if resp.status == http.StatusUnauthorized {
		apiErr.Err = ErrUnauthorized
	}

	var body dto.ErrorBody
	if err := json.Unmarshal(resp.body, &body); err != nil {
		return apiErr
	}
	if msg := body.BestMessage(); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}
