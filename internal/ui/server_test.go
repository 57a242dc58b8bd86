package ui

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvview/internal/csvconvert"
	"github.com/leapstack-labs/csvview/internal/testutil"
	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// startServer runs the UI handler on an httptest server whose controllers
// load rows from that same server over HTTP.
func startServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	conv := csvconvert.New(csvconvert.Config{
		DataDir: testutil.SetupDataDir(t),
		Logger:  logger,
	})

	var remote viewer.Loader
	srv := NewServer(Config{
		Converter: conv,
		Loader: viewer.LoaderFunc(func(ctx context.Context, id core.DatasetID) ([]core.Row, error) {
			return remote.Load(ctx, id)
		}),
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Caps:          []int{50, 100},
		Logger:        logger,
	})

	handler, err := srv.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Registry().Wait)
	remote = viewer.NewHTTPLoader(ts.URL, ts.Client())

	return srv, ts
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// pageBody fetches url for use inside require.Eventually, returning "" on
// any failure.
func pageBody(client *http.Client, url string) string {
	resp, err := client.Get(url)
	if err != nil {
		return ""
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}
	return string(body)
}

func TestServer_ConvertEndpoint(t *testing.T) {
	_, ts := startServer(t)

	resp, body := get(t, ts.Client(), ts.URL+"/api/csv-convert?dataset=facebook")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `[{"name":"Dune Cafe","phone":"15550004","categories":"Cafe","address":"4 Beach Rd"}]`, body)

	resp, _ = get(t, ts.Client(), ts.URL+"/api/csv-convert?dataset=combined")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_StaticAssets(t *testing.T) {
	_, ts := startServer(t)

	resp, _ := get(t, ts.Client(), ts.URL+"/static/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ViewerLoadsOverHTTP(t *testing.T) {
	srv, ts := startServer(t)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := ts.Client()
	client.Jar = jar

	resp, body := get(t, client, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="viewer"`)
	require.Equal(t, 1, srv.Registry().Len())

	// The page's session loads google through /api/csv-convert.
	require.Eventually(t, func() bool {
		return strings.Contains(pageBody(client, ts.URL+"/"), "<td>Bolt Garage</td>")
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, srv.Registry().Len(), "cookie keeps the same session")

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/viewer/dataset", strings.NewReader(`{"dataset":"merged"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err = client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return strings.Contains(pageBody(client, ts.URL+"/"), "<th>name</th><th>phone</th><th>address</th><th>category</th><th>source</th>")
	}, 2*time.Second, 20*time.Millisecond)
}
