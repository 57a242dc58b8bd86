package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_IssuesAndReusesCookie(t *testing.T) {
	store := NewCookieStore("test-secret-key-32-bytes-long!!")

	rec := httptest.NewRecorder()
	id, err := ID(store, rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "session id should be a uuid")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, Name, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()

	again, err := ID(store, rec, req)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Empty(t, rec.Result().Cookies(), "known sessions are not re-issued")
}

func TestID_ReplacesForeignCookie(t *testing.T) {
	store := NewCookieStore("test-secret-key-32-bytes-long!!")
	other := NewCookieStore("another-secret-key-32-bytes-long")

	rec := httptest.NewRecorder()
	foreign, err := ID(other, rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	rec = httptest.NewRecorder()

	id, err := ID(store, rec, req)
	require.NoError(t, err)
	assert.NotEqual(t, foreign, id)
	assert.Len(t, rec.Result().Cookies(), 1)
}
