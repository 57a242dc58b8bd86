// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/csvview/internal/testutil"
	"github.com/leapstack-labs/csvview/internal/ui/notifier"
	"github.com/leapstack-labs/csvview/internal/ui/session"
	"github.com/leapstack-labs/csvview/internal/viewer"
	"github.com/leapstack-labs/csvview/pkg/core"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Registry     *viewer.Registry
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore
}

// SetupTestFixture creates a registry whose controllers load through loader
// and ping the fixture's notifier on every change, as the server wires them.
// Cleanup waits for every load the test started, since loads log through t.
func SetupTestFixture(t *testing.T, loader viewer.Loader) *TestFixture {
	t.Helper()

	logger := testutil.NewTestLogger(t)
	notify := notifier.New()

	registry := viewer.NewRegistry(func(key string) *viewer.Controller {
		return viewer.New(viewer.Config{
			Loader: loader,
			Logger: logger.With("session", key),
			OnChange: func(viewer.Snapshot) {
				notify.Notify(key)
			},
		})
	}, time.Minute, logger)
	t.Cleanup(registry.Wait)

	return &TestFixture{
		Registry:     registry,
		Notifier:     notify,
		SessionStore: NewTestSessionStore(),
	}
}

// StaticLoader serves fixed rows per dataset and fails for anything else.
func StaticLoader(data map[core.DatasetID][]core.Row) viewer.Loader {
	return viewer.LoaderFunc(func(_ context.Context, id core.DatasetID) ([]core.Row, error) {
		rows, ok := data[id]
		if !ok {
			return nil, fmt.Errorf("unknown dataset %q", id)
		}
		return rows, nil
	})
}

// NewSession issues a session cookie and returns it with its registry key.
// The session's controller is not created until a handler first sees it.
func (f *TestFixture) NewSession(t *testing.T) (*http.Cookie, string) {
	t.Helper()

	rec := httptest.NewRecorder()
	key, err := session.ID(f.SessionStore, rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0], key
}

// WaitLoaded waits until the controller for key has no load in flight and
// returns its snapshot.
func (f *TestFixture) WaitLoaded(t *testing.T, key string) viewer.Snapshot {
	t.Helper()

	var snap viewer.Snapshot
	require.Eventually(t, func() bool {
		ctrl, ok := f.Registry.Lookup(key)
		if !ok {
			return false
		}
		snap = ctrl.Snapshot()
		return !snap.Loading
	}, time.Second, 5*time.Millisecond)
	return snap
}

// RequestWithPathParam wraps a request with chi URL params.
func RequestWithPathParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return session.NewCookieStore("test-secret-key-32-bytes-long!!")
}
