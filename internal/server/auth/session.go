package auth

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/photoshare/internal/common"
)

// Sessions issues and reads the session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions returns a cookie session manager. secure marks the cookie
// HTTPS-only.
func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Login binds the client to userID by setting a signed session cookie.
func (s *Sessions) Login(w http.ResponseWriter, userID string) error {
	token, err := GenerateToken(userID, s.secret, s.ttl)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.ttl),
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout expires the session cookie. Sessions are not tracked server-side,
// so a copied token keeps working until its own expiry.
func (s *Sessions) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID returns the user id bound to the request's session.
func (s *Sessions) UserID(r *http.Request) (string, error) {
	c, err := r.Cookie(common.SessionCookieName)
	if err != nil || c.Value == "" {
		return "", common.ErrInvalidToken
	}
	return GetUserIDFromToken(c.Value, s.secret)
}
