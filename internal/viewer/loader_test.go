package viewer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maxcnunes/httpfake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvview/pkg/core"
)

func TestHTTPLoader_URL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		dataset  core.DatasetID
		expected string
	}{
		{"plain", "http://host", core.DatasetGoogle, "http://host/api/csv-convert?dataset=google"},
		{"trailing slash", "http://host/", core.DatasetWebsiteAddress, "http://host/api/csv-convert?dataset=website_address"},
		{"arbitrary string is escaped not rejected", "http://host", core.DatasetID("a b&c"), "http://host/api/csv-convert?dataset=a+b%26c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewHTTPLoader(tt.base, nil).URL(tt.dataset))
		})
	}
}

func TestHTTPLoader_Load(t *testing.T) {
	fake := httpfake.New(httpfake.WithTesting(t))
	defer fake.Close()

	fake.NewHandler().
		Get(ConvertPath).
		AssertQueryValue("dataset", "website").
		Reply(http.StatusOK).
		SetHeader("Content-Type", "application/json").
		BodyString(`[{"name":"Acme","phone":"1"},{"name":"Bolt","phone":"2"},{"name":"Cobalt","phone":"3"}]`)

	rows, err := NewHTTPLoader(fake.ResolveURL(""), nil).Load(context.Background(), core.DatasetWebsite)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "phone"}, rows[0].Keys())
	assert.Equal(t, "Cobalt", rows[2].Cell("name"))
}

func TestHTTPLoader_EmptyArray(t *testing.T) {
	fake := httpfake.New()
	defer fake.Close()

	fake.NewHandler().
		Get(ConvertPath).
		Reply(http.StatusOK).
		BodyString(`[]`)

	rows, err := NewHTTPLoader(fake.ResolveURL(""), nil).Load(context.Background(), core.DatasetGoogle)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestHTTPLoader_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "non-2xx status",
			status: http.StatusBadRequest,
			body:   `{"error":"Invalid dataset type"}`,
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, http.StatusBadRequest, statusErr.Code)
				assert.Contains(t, statusErr.Error(), "Invalid dataset type")
			},
		},
		{
			name:   "non-json body",
			status: http.StatusOK,
			body:   `<html>gateway</html>`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, core.ErrMalformedRows)
			},
		},
		{
			name:   "json object instead of array",
			status: http.StatusOK,
			body:   `{"rows":[]}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, core.ErrMalformedRows)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := httpfake.New()
			defer fake.Close()

			fake.NewHandler().
				Get(ConvertPath).
				Reply(tt.status).
				BodyString(tt.body)

			_, err := NewHTTPLoader(fake.ResolveURL(""), nil).Load(context.Background(), core.DatasetID("nope"))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestHTTPLoader_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPLoader(url, nil).Load(context.Background(), core.DatasetGoogle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request failed")
}
