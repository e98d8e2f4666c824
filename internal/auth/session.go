package auth

import (
	"net/http"
	"time"
)

const (
	// DefaultTTL is the absolute session lifetime, counted from login.
	DefaultTTL = 24 * time.Hour

	// SessionCookieName carries the session token between browser and
	// server. The token can alternatively be sent via TokenHeaderName.
	SessionCookieName = "coindrop_session"
	TokenHeaderName   = "X-Coindrop-Token"

	sessionKeyPrefix = "coindrop-session||"
	tokensSetKey     = "coindrop-sessions"
)

// Session binds one opaque token to one administrator identity.
// Stored server side (redis); the token itself carries no data.
type Session struct {
	AdminID       string `json:"admin_id"`
	AdminUsername string `json:"admin_username"`
	CreatedAtUnix int64  `json:"created_at"`
}

func (s *Session) CreatedAt() time.Time {
	return time.Unix(s.CreatedAtUnix, 0)
}

// TokenFromRequest extracts the session token from the session cookie,
// falling back to the token header. Empty string when neither is set.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get(TokenHeaderName)
}
