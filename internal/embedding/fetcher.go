package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the default embedding service endpoint.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 15 * time.Second

	// apiPathQuery is the endpoint returning labels and 2D coordinates.
	apiPathQuery = "/query"

	// maxErrorBody caps how much of an error body is echoed back.
	maxErrorBody = 512
)

// Fetcher retrieves the node identifiers and coordinates for a viewer.
type Fetcher interface {
	// Fetch returns the layout for the given viewer in a single round trip.
	Fetch(ctx context.Context, viewerID string) (*Result, error)
}

// HTTPFetcher fetches embeddings from the /query endpoint.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithBaseURL sets the service base URL.
func WithBaseURL(u string) Option {
	return func(f *HTTPFetcher) {
		f.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = hc
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.client.Timeout = timeout
	}
}

// NewHTTPFetcher creates a new embedding fetcher.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// queryResponse is the wire format of the /query endpoint.
type queryResponse struct {
	Labels       []string    `json:"labels"`
	Embeddings2D [][]float64 `json:"embeddings_2d"`
}

// Fetch retrieves labels and coordinates for viewerID. It never retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, viewerID string) (*Result, error) {
	if viewerID == "" {
		return nil, &FetchError{Err: ErrMissingViewer}
	}

	result, err := f.fetch(ctx, viewerID)
	if err != nil {
		return nil, &FetchError{ViewerID: viewerID, Err: err}
	}
	return result, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context, viewerID string) (*Result, error) {
	endpoint := f.baseURL + apiPathQuery + "?" + url.Values{"userId": {viewerID}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: formatErrorBody(resp.Body)}
	}

	var body queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrInvalidResponse, err)
	}

	return toResult(body)
}

// toResult converts the wire payload, rejecting anything that would break
// the label/coordinate index pairing.
func toResult(body queryResponse) (*Result, error) {
	if body.Labels == nil || body.Embeddings2D == nil {
		return nil, fmt.Errorf("%w: missing labels or embeddings_2d", ErrInvalidResponse)
	}

	coords := make([]Point, len(body.Embeddings2D))
	for i, pair := range body.Embeddings2D {
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: coordinate %d has %d components", ErrInvalidResponse, i, len(pair))
		}
		coords[i] = Point{X: pair[0], Y: pair[1]}
	}

	result := &Result{Labels: body.Labels, Coords: coords}
	if err := result.validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// formatErrorBody reads a bounded prefix of the response body for error messages.
func formatErrorBody(body io.Reader) string {
	respBody, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return strings.TrimSpace(string(respBody))
}
