package profile

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

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the default profile service endpoint.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single lookup.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the sustained lookups per second across all callers.
	DefaultRateLimit = 20.0

	// DefaultBurst is how many lookups may start at once.
	DefaultBurst = 5

	apiPathFind = "/find_document"
	apiPathAdd  = "/add_document"

	maxErrorBody = 512
)

// Lookup resolves a node identifier to its profile.
type Lookup interface {
	// Find returns the profile for id, or (nil, nil) when none exists.
	// Errors are reserved for transport and parse failures.
	Find(ctx context.Context, id string) (*Record, error)
}

// Client is a rate-limited HTTP client for the profile document API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	validate   *validator.Validate
	baseURL    string
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL sets the service base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRateLimit sets the sustained request rate and burst size.
func WithRateLimit(perSecond float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new profile client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultBurst),
		validate:   validator.New(),
		baseURL:    DefaultBaseURL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(breakerSettings(c.logger))
	return c
}

// breakerSettings trips after a sustained burst of failures. Cancellation
// by the caller is not held against the service.
func breakerSettings(logger *zap.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "profile-lookup",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
}

// Find returns the profile for id. A missing profile is (nil, nil).
func (c *Client) Find(ctx context.Context, id string) (*Record, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchDocument(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}
	return out.(*Record), nil
}

// Document returns the full profile document for id, including the
// questionnaire text. Unlike Find, a missing document is ErrNotFound.
func (c *Client) Document(ctx context.Context, id string) (*Record, error) {
	rec, err := c.fetchDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, nil
}

// Save writes a profile document via /add_document.
func (c *Client) Save(ctx context.Context, sub Submission) error {
	if err := c.validate.Struct(sub); err != nil {
		return fmt.Errorf("invalid submission: %w", err)
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshaling submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPathAdd, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkHTTPErrors(resp, sub.UserID)
}

// fetchDocument performs the /find_document call. It returns (nil, nil)
// when the results map has no entry for id.
func (c *Client) fetchDocument(ctx context.Context, id string) (*Record, error) {
	endpoint := c.baseURL + apiPathFind + "?" + url.Values{"userId": {id}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, id); err != nil {
		return nil, err
	}

	var doc documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding document for %s: %v", ErrInvalidResponse, id, err)
	}

	results := doc.results()
	if results == nil {
		return nil, fmt.Errorf("%w: no results in document for %s", ErrInvalidResponse, id)
	}
	return results[id], nil
}

// do waits for the rate limiter, tags the request and sends it.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	return resp, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, userID string) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorBody(resp.Body),
			UserID:     userID,
		}
	}
	return nil
}

// readErrorBody reads a bounded prefix of the body for error messages.
func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return strings.TrimSpace(string(data))
}
