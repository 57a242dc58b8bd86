package viewer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/leapstack-labs/csvview/pkg/core"
)

// ConvertPath is the path of the CSV conversion endpoint.
const ConvertPath = "/api/csv-convert"

// Loader fetches the rows of one dataset.
type Loader interface {
	Load(ctx context.Context, id core.DatasetID) ([]core.Row, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, id core.DatasetID) ([]core.Row, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, id core.DatasetID) ([]core.Row, error) {
	return f(ctx, id)
}

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("conversion endpoint returned %d", e.Code)
	}
	return fmt.Sprintf("conversion endpoint returned %d: %s", e.Code, e.Body)
}

// maxErrorBody bounds how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// HTTPLoader loads datasets from the conversion endpoint over HTTP.
type HTTPLoader struct {
	baseURL string
	client  *http.Client
}

// NewHTTPLoader creates a loader for the endpoint rooted at baseURL.
// A nil client means http.DefaultClient; no request timeout is applied.
func NewHTTPLoader(baseURL string, client *http.Client) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// URL returns the request URL for a dataset. The identifier is forwarded
// verbatim, only query-escaped.
func (l *HTTPLoader) URL(id core.DatasetID) string {
	q := url.Values{}
	q.Set("dataset", string(id))
	return l.baseURL + ConvertPath + "?" + q.Encode()
}

// Load performs GET /api/csv-convert?dataset=<id> and decodes the JSON array.
func (l *HTTPLoader) Load(ctx context.Context, id core.DatasetID) ([]core.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.URL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	rows, err := core.DecodeRows(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset %q: %w", id, err)
	}
	return rows, nil
}
