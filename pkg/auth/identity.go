package auth

import (
	"fmt"
	"net/http"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/store"
)

// SessionHeader carries the session token for API callers
const SessionHeader = "X-Session-Token"

// SessionCookie carries the session token for browser callers
const SessionCookie = "warden_session"

// IdentityResolver derives the authenticated user id from a request. A
// missing or invalid identity fails with authz.ErrAuthenticationRequired.
type IdentityResolver interface {
	ResolveUser(r *http.Request) (string, error)
}

// SessionResolver resolves identity from a session token in the
// X-Session-Token header or the session cookie, looked up in the shared
// store under session:<token>.
type SessionResolver struct {
	store store.Store
}

// NewSessionResolver creates a store-backed session resolver
func NewSessionResolver(s store.Store) *SessionResolver {
	return &SessionResolver{store: s}
}

// ResolveUser returns the user id for the request's session token
func (sr *SessionResolver) ResolveUser(r *http.Request) (string, error) {
	token := r.Header.Get(SessionHeader)
	if token == "" {
		if cookie, err := r.Cookie(SessionCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return "", fmt.Errorf("no session token: %w", authz.ErrAuthenticationRequired)
	}

	userID, found, err := sr.store.Get(r.Context(), store.SessionKey(token))
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("unknown session token: %w", authz.ErrAuthenticationRequired)
	}
	return userID, nil
}
