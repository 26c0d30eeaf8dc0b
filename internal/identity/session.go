package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionUser is the minimal principal the provider attaches to a session.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the credential bundle issued by the identity provider.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         SessionUser `json:"user"`
}

// Expired reports whether the access token is past (or within skew of) its
// expiry. Sessions without an expiry never report expired.
func (s *Session) Expired(skew time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(skew).After(s.ExpiresAt)
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// hydrateFromToken fills in missing user fields from the access token claims.
// The token is provider-signed; we only read claims here, verification stays
// with the provider.
func (s *Session) hydrateFromToken() {
	if s.AccessToken == "" || (s.User.ID != "" && s.User.Email != "") {
		return
	}
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, &claims); err != nil {
		return
	}
	if s.User.ID == "" {
		s.User.ID = claims.Subject
	}
	if s.User.Email == "" {
		s.User.Email = claims.Email
	}
	if s.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
}
