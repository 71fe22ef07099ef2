// Package http implements the transport beneath every gateway: request
// construction, authentication, bounded retries with exponential backoff,
// and typed error classification.
package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"

	"github.com/netvista-io/netsync/internal/auth"
	"github.com/netvista-io/netsync/internal/constants"
	"github.com/netvista-io/netsync/pkg/netsync"
)

// Request is one outgoing API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string

	// Upload marks archive-class requests, which get the longer timeout.
	Upload bool
}

// Response is the settled result of a request.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
	Metadata   netsync.RequestMetadata
	Elapsed    time.Duration
}

// Client sends authenticated JSON requests with retries. All state is per
// instance.
type Client struct {
	baseURL       string
	creds         auth.CredentialProvider
	rc            *retryablehttp.Client
	uploadRC      *retryablehttp.Client
	logger        netsync.Logger
	debug         bool
	userAgent     string
	timeout       time.Duration
	uploadTimeout time.Duration
	retryMax      int
	retryWaitMin  time.Duration
	retryWaitMax  time.Duration
	interceptors  *netsync.InterceptorChain

	mu    sync.Mutex
	stats netsync.TransportStats
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger netsync.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig overrides the retry budget and backoff bounds.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryMax = retryMax
		c.retryWaitMin = waitMin
		c.retryWaitMax = waitMax
	}
}

// WithTimeouts overrides the request timeouts.
func WithTimeouts(timeout, uploadTimeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.uploadTimeout = uploadTimeout
	}
}

// WithInterceptors attaches an interceptor chain.
func WithInterceptors(chain *netsync.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// attemptKey carries the per-request attempt counter through the retry
// loop.
type attemptKey struct{}

// NewClient creates a transport client for baseURL. A nil credential
// provider sends unauthenticated requests.
func NewClient(baseURL string, creds auth.CredentialProvider, opts ...Option) *Client {
	client := &Client{
		baseURL:       baseURL,
		creds:         creds,
		timeout:       constants.DefaultHTTPTimeout,
		uploadTimeout: constants.UploadHTTPTimeout,
		retryMax:      constants.RetryMax,
		retryWaitMin:  constants.RetryWaitMin,
		retryWaitMax:  constants.RetryWaitMax,
	}

	for _, opt := range opts {
		opt(client)
	}

	// The timeout bounds each attempt, not the whole retry loop, so a hung
	// attempt fails over into the next one. Upload-class requests get their
	// own client with the longer bound. The request context carries caller
	// cancellation only.
	client.rc = client.newRetryable(client.timeout)
	client.uploadRC = client.newRetryable(client.uploadTimeout)

	return client
}

func (c *Client) newRetryable(timeout time.Duration) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = c.retryMax
	rc.RetryWaitMin = c.retryWaitMin
	rc.RetryWaitMax = c.retryWaitMax
	rc.Logger = nil
	rc.CheckRetry = checkRetry
	rc.Backoff = backoff
	rc.HTTPClient.Timeout = timeout

	// Hand the final response back once the budget is spent so the status
	// settles into a classified error instead of a generic giving-up one.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	rc.RequestLogHook = func(_ retryablehttp.Logger, req *nethttp.Request, attemptNum int) {
		req.Header.Set("X-Retry-Attempt", strconv.Itoa(attemptNum))

		if counter, ok := req.Context().Value(attemptKey{}).(*atomic.Int32); ok {
			counter.Store(int32(attemptNum))
		}

		if attemptNum > 0 {
			c.count(func(s *netsync.TransportStats) { s.Retries++ })

			if c.logger != nil {
				c.logger.Warn("retrying request", map[string]interface{}{
					"method":  req.Method,
					"path":    req.URL.Path,
					"attempt": attemptNum,
				})
			}
		}
	}

	return rc
}

// checkRetry retries attempt timeouts, transient connection failures, and
// the transient status set. Caller cancellation, permanent transport
// failures, rate limiting, and other 4xx statuses settle immediately.
func checkRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return retryableTransportError(err), nil
	}

	return netsync.RetryableStatus(resp.StatusCode), nil
}

// retryableTransportError reports whether another attempt could succeed.
// A timed-out or refused connection may recover; an unknown host, a bad
// scheme, or a redirect loop will not.
func retryableTransportError(err error) bool {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return true
	}

	if urlErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(urlErr.Err, &dnsErr) && dnsErr.IsNotFound {
		return false
	}

	msg := urlErr.Err.Error()
	if strings.Contains(msg, "unsupported protocol scheme") || strings.Contains(msg, "stopped after") {
		return false
	}

	return true
}

// backoff doubles the minimum wait per attempt, capped at the maximum:
// 2s, 4s, 8s with the defaults.
func backoff(waitMin, waitMax time.Duration, attemptNum int, _ *nethttp.Response) time.Duration {
	wait := waitMin << attemptNum
	if wait > waitMax || wait <= 0 {
		wait = waitMax
	}

	return wait
}

// newRequestID returns a random request correlation id.
func newRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)

	return hex.EncodeToString(buf)
}

// Do sends a request and settles it into a Response. HTTP error statuses
// return both the response and a classified *netsync.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	operation := req.Method + " " + req.Path

	meta := netsync.RequestMetadata{
		RequestID: newRequestID(),
		IssuedAt:  time.Now(),
	}

	var bodyBytes []byte

	if req.Body != nil {
		var err error

		bodyBytes, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	// The same annotated request is handed to the response interceptors so
	// request-side metadata (timing marks and the like) survives the round
	// trip.
	var ireq *netsync.Request

	if c.interceptors != nil {
		ireq = &netsync.Request{
			Method:  req.Method,
			Path:    req.Path,
			Headers: make(nethttp.Header),
			Body:    bodyBytes,
		}

		err := c.interceptors.ExecuteRequestInterceptors(ctx, ireq)
		if err != nil {
			return nil, err
		}
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	rc := c.rc
	if req.Upload {
		rc = c.uploadRC
	}

	attempts := &atomic.Int32{}
	ctx = context.WithValue(ctx, attemptKey{}, attempts)

	var reader io.Reader
	if bodyBytes != nil {
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", meta.RequestID)

	if bodyBytes != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	if c.creds != nil {
		header, err := c.creds.AuthorizationHeader(ctx)
		if err != nil {
			return nil, &netsync.APIError{
				Kind:      netsync.ErrKindAuth,
				Message:   err.Error(),
				Operation: operation,
				RequestID: meta.RequestID,
			}
		}

		httpReq.Header.Set("Authorization", header)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if ireq != nil {
		for key, values := range ireq.Headers {
			httpReq.Header[key] = values
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("sending request", map[string]interface{}{
			"method":     req.Method,
			"path":       req.Path,
			"request_id": meta.RequestID,
		})
	}

	c.count(func(s *netsync.TransportStats) { s.Requests++ })

	httpResp, err := rc.Do(httpReq)

	meta.RetryAttempt = int(attempts.Load())
	elapsed := time.Since(meta.IssuedAt)

	if err != nil {
		c.count(func(s *netsync.TransportStats) { s.Errors++ })

		classified := c.classifyTransportError(err, operation, meta, elapsed)

		if c.interceptors != nil {
			_ = c.interceptors.ExecuteResponseInterceptors(ctx, ireq, &netsync.Response{Error: classified})
		}

		return nil, classified
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.count(func(s *netsync.TransportStats) { s.Errors++ })

		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		Metadata:   meta,
		Elapsed:    elapsed,
	}

	var statusErr error
	if resp.StatusCode >= 400 {
		statusErr = c.classifyStatusError(resp, operation, meta, elapsed)
	}

	if c.interceptors != nil {
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, ireq, &netsync.Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
			Error:      statusErr,
		})
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("received response", map[string]interface{}{
			"method":     req.Method,
			"path":       req.Path,
			"status":     resp.StatusCode,
			"request_id": meta.RequestID,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}

	if statusErr != nil {
		c.count(func(s *netsync.TransportStats) { s.Errors++ })

		return resp, statusErr
	}

	return resp, nil
}

// classifyTransportError settles a connection-level failure into a typed
// error. Timeouts are distinguished from other network failures.
func (c *Client) classifyTransportError(err error, operation string, meta netsync.RequestMetadata, elapsed time.Duration) error {
	kind := netsync.ErrKindNetwork
	message := "request failed"

	var urlErr *url.Error

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = netsync.ErrKindTimeout
		message = "request timed out"
	case errors.As(err, &urlErr) && urlErr.Timeout():
		kind = netsync.ErrKindTimeout
		message = "request timed out"
	}

	return &netsync.APIError{
		Kind:      kind,
		Message:   message,
		Detail:    err.Error(),
		Operation: operation,
		RequestID: meta.RequestID,
		Elapsed:   elapsed,
	}
}

// backendError is the error shape the backend serializes.
type backendError struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// classifyStatusError settles an HTTP error status into a typed error,
// extracting backend detail when present.
func (c *Client) classifyStatusError(resp *Response, operation string, meta netsync.RequestMetadata, elapsed time.Duration) error {
	detail := ""

	parsed := backendError{}
	if json.Unmarshal(resp.Body, &parsed) == nil {
		switch {
		case parsed.Detail != "":
			detail = parsed.Detail
		case parsed.Message != "":
			detail = parsed.Message
		case parsed.Error != "":
			detail = parsed.Error
		}
	}

	kind := netsync.ClassifyStatus(resp.StatusCode)

	return &netsync.APIError{
		Kind:      kind,
		Status:    resp.StatusCode,
		Message:   nethttp.StatusText(resp.StatusCode),
		Detail:    detail,
		Operation: operation,
		RequestID: meta.RequestID,
		Elapsed:   elapsed,
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodGet, Path: path, Query: query})
}

// Post sends a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPut, Path: path, Body: body})
}

// Patch sends a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: nethttp.MethodDelete, Path: path})
}

// Stats returns a copy of the transport counters.
func (c *Client) Stats() netsync.TransportStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.stats
}

// ResetStats zeroes the transport counters.
func (c *Client) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats = netsync.TransportStats{}
}

func (c *Client) count(update func(*netsync.TransportStats)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	update(&c.stats)
}
