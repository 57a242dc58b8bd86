// Package session identifies browser sessions with a signed cookie.
package session

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// Name is the cookie name used for viewer sessions.
const Name = "csvview"

const idKey = "id"

// NewCookieStore creates the cookie store used by the UI server.
func NewCookieStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// ID returns the session id carried by r. Requests without a valid session
// cookie get a fresh id, and the cookie is set on w, so ID must be called
// before anything is written to the response body.
func ID(store sessions.Store, w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := store.Get(r, Name)
	if sess == nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	// A cookie that fails to decode still yields a new session, replaced below.

	if id, ok := sess.Values[idKey].(string); ok && id != "" {
		return id, nil
	}

	id := uuid.NewString()
	sess.Values[idKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return id, nil
}
