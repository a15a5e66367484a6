package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/cyphera/billing-reconciler/internal/logger"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of an error response body is kept.
const maxErrorBody = 4 << 10

// ClientOption represents a function that can modify the HTTP client
type ClientOption func(*HTTPClient)

// RequestOption represents a function that can modify an HTTP request
type RequestOption func(*http.Request)

// HTTPError represents an error returned from an HTTP request
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Method     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d %s: %s", e.Method, e.URL, e.StatusCode, e.Status, e.Body)
}

// RetryConfig configures the retry behavior
type RetryConfig struct {
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	Multiplier           float64
	MaxElapsedTime       time.Duration
	RetryableStatusCodes []int
}

// DefaultRetryConfig provides sensible defaults for retries
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:           3,
		InitialInterval:      200 * time.Millisecond,
		MaxInterval:          5 * time.Second,
		Multiplier:           2.0,
		MaxElapsedTime:       30 * time.Second,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// HTTPClient posts JSON documents with bounded retries.
type HTTPClient struct {
	httpClient     *http.Client
	defaultHeaders map[string]string
	retryConfig    *RetryConfig
}

// NewHTTPClient creates a new HTTPClient with the given options
func NewHTTPClient(options ...ClientOption) *HTTPClient {
	client := &HTTPClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		defaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		retryConfig: DefaultRetryConfig(),
	}

	for _, option := range options {
		option(client)
	}
	return client
}

// WithTimeout sets the timeout for all requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetryConfig sets the retry configuration. nil disables retries.
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *HTTPClient) {
		c.retryConfig = config
	}
}

// WithDefaultHeader adds a default header to all requests
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *HTTPClient) {
		c.defaultHeaders[key] = value
	}
}

// WithHeader adds a header to the request
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// WithBearerToken adds bearer token authentication to the request
func WithBearerToken(token string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// PostJSON marshals body and posts it to rawURL. Retryable status codes and
// transport errors are retried with exponential backoff. Any final status of
// 400 or above is returned as *HTTPError. The response body is always drained
// and closed.
func (c *HTTPClient) PostJSON(ctx context.Context, rawURL string, body interface{}, options ...RequestOption) error {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	start := time.Now()
	var lastStatus int

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for key, value := range c.defaultHeaders {
			req.Header.Set(key, value)
		}
		for _, option := range options {
			option(req)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		lastStatus = resp.StatusCode

		if resp.StatusCode < 400 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}

		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        rawURL,
			Method:     http.MethodPost,
			Body:       string(bodyBytes),
		}
		if c.retryConfig != nil && slices.Contains(c.retryConfig.RetryableStatusCodes, resp.StatusCode) {
			return httpErr
		}
		return backoff.Permanent(httpErr)
	}

	if c.retryConfig != nil && c.retryConfig.MaxRetries > 0 {
		expBackoff := backoff.NewExponentialBackOff()
		expBackoff.InitialInterval = c.retryConfig.InitialInterval
		expBackoff.MaxInterval = c.retryConfig.MaxInterval
		expBackoff.Multiplier = c.retryConfig.Multiplier
		expBackoff.MaxElapsedTime = c.retryConfig.MaxElapsedTime

		err = backoff.RetryNotify(operation,
			backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(c.retryConfig.MaxRetries)), ctx),
			func(err error, wait time.Duration) {
				logger.Warn("HTTP request failed, retrying",
					zap.String("url", rawURL),
					zap.Duration("wait", wait),
					zap.Error(err))
			})
	} else {
		err = operation()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	}

	duration := time.Since(start)
	if err != nil {
		logger.Error("HTTP request failed",
			zap.String("method", http.MethodPost),
			zap.String("url", rawURL),
			zap.Int("status", lastStatus),
			zap.Error(err),
			zap.Duration("duration", duration))
		return fmt.Errorf("http request failed: %w", err)
	}

	logger.Debug("HTTP request successful",
		zap.String("method", http.MethodPost),
		zap.String("url", rawURL),
		zap.Int("status", lastStatus),
		zap.Duration("duration", duration))
	return nil
}
