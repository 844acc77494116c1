package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathQuery {
			t.Errorf("path = %s, want %s", r.URL.Path, apiPathQuery)
		}
		if got := r.URL.Query().Get("userId"); got != "u1" {
			t.Errorf("userId = %q, want %q", got, "u1")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewHTTPFetcher_Defaults(t *testing.T) {
	f := NewHTTPFetcher()

	if f.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", f.baseURL, DefaultBaseURL)
	}
	if f.client.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", f.client.Timeout, DefaultTimeout)
	}
}

func TestNewHTTPFetcher_WithOptions(t *testing.T) {
	f := NewHTTPFetcher(
		WithBaseURL("http://custom:9000/"),
		WithTimeout(3*time.Second),
	)

	if f.baseURL != "http://custom:9000" {
		t.Errorf("baseURL = %s, want trailing slash trimmed", f.baseURL)
	}
	if f.client.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", f.client.Timeout)
	}
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"labels":["u1","u2"],"embeddings_2d":[[0,0],[3,4]]}`)
	f := NewHTTPFetcher(WithBaseURL(srv.URL))

	result, err := f.Fetch(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if result.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", result.Len())
	}
	if result.Labels[1] != "u2" {
		t.Errorf("Labels[1] = %q, want u2", result.Labels[1])
	}
	if result.Coords[1] != (Point{X: 3, Y: 4}) {
		t.Errorf("Coords[1] = %+v, want {3 4}", result.Coords[1])
	}
}

func TestHTTPFetcher_Fetch_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing embeddings", `{"labels":["u1"]}`},
		{"length mismatch", `{"labels":["u1","u2"],"embeddings_2d":[[0,0]]}`},
		{"short pair", `{"labels":["u1"],"embeddings_2d":[[1]]}`},
		{"long pair", `{"labels":["u1"],"embeddings_2d":[[1,2,3]]}`},
		{"empty label", `{"labels":[""],"embeddings_2d":[[1,2]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, http.StatusOK, tt.body)
			f := NewHTTPFetcher(WithBaseURL(srv.URL))

			_, err := f.Fetch(context.Background(), "u1")
			if !IsInvalidResponse(err) {
				t.Fatalf("Fetch() error = %v, want ErrInvalidResponse", err)
			}
			var fe *FetchError
			if !errors.As(err, &fe) || fe.ViewerID != "u1" {
				t.Errorf("error should be a *FetchError for u1, got %T", err)
			}
		})
	}
}

func TestHTTPFetcher_Fetch_StatusError(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, "upstream down\n")
	f := NewHTTPFetcher(WithBaseURL(srv.URL))

	_, err := f.Fetch(context.Background(), "u1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Fetch() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusBadGateway)
	}
	if apiErr.Message != "upstream down" {
		t.Errorf("Message = %q, want trimmed body", apiErr.Message)
	}
}

func TestHTTPFetcher_Fetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	f := NewHTTPFetcher(WithBaseURL(srv.URL))

	_, err := f.Fetch(context.Background(), "u1")
	if !errors.Is(err, ErrNetworkError) {
		t.Fatalf("Fetch() error = %v, want ErrNetworkError", err)
	}
}

func TestHTTPFetcher_Fetch_MissingViewer(t *testing.T) {
	f := NewHTTPFetcher(WithBaseURL("http://unused.invalid"))

	_, err := f.Fetch(context.Background(), "")
	if !errors.Is(err, ErrMissingViewer) {
		t.Fatalf("Fetch() error = %v, want ErrMissingViewer", err)
	}
}

func TestFormatErrorBody(t *testing.T) {
	long := strings.Repeat("x", maxErrorBody+100)
	if got := formatErrorBody(strings.NewReader(long)); len(got) != maxErrorBody {
		t.Errorf("len(formatErrorBody()) = %d, want %d", len(got), maxErrorBody)
	}
	if got := formatErrorBody(strings.NewReader("  boom \n")); got != "boom" {
		t.Errorf("formatErrorBody() = %q, want %q", got, "boom")
	}
}

func TestHTTPFetcher_ImplementsFetcher(t *testing.T) {
	var _ Fetcher = (*HTTPFetcher)(nil)
}
