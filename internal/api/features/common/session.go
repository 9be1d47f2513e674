// Package common provides shared helpers for API features: session ids,
// JSON encoding, and error responses.
package common

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// SessionName is the cookie name of the LeapML session.
const SessionName = "leapml"

const sessionIDKey = "id"

// ErrEmptySessionSecret is returned for a blank session secret, which the
// cookie codec cannot sign with.
var ErrEmptySessionSecret = errors.New("session secret must not be empty")

// NewSessionStore returns a cookie store for session ids.
func NewSessionStore(secret string) (*sessions.CookieStore, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySessionSecret
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store, nil
}

// SessionID returns the caller's session id, minting and saving a new one
// when the request carries none. It must run before the body is written.
func SessionID(store sessions.Store, w http.ResponseWriter, r *http.Request) (string, error) {
	// A cookie that fails to decode yields a fresh session.
	sess, _ := store.Get(r, SessionName)
	if sess == nil {
		sess = sessions.NewSession(store, SessionName)
	}

	if id, ok := sess.Values[sessionIDKey].(string); ok {
		if _, err := uuid.Parse(id); err == nil {
			return id, nil
		}
	}

	id := uuid.NewString()
	sess.Values[sessionIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}
