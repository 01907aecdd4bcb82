package auth

import (
	"net/http"
	"time"
)

// Cookie names for the two auth credentials.
const (
	AccessCookieName  = "enroll_access"
	RefreshCookieName = "enroll_refresh"
)

// Cookies reads and writes the auth cookies on HTTP messages.
// Both cookies are HttpOnly, SameSite=Strict, Path=/; Secure follows config.
type Cookies struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCookies creates the cookie service.
func NewCookies(secure bool, accessTTL, refreshTTL time.Duration) *Cookies {
	return &Cookies{secure: secure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// ReadAccessToken returns the access cookie value, or "" if absent.
func (c *Cookies) ReadAccessToken(r *http.Request) string {
	cookie, err := r.Cookie(AccessCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ReadRefreshToken returns the raw refresh secret from the cookie, or "".
func (c *Cookies) ReadRefreshToken(r *http.Request) string {
	cookie, err := r.Cookie(RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSession writes both auth cookies for a freshly issued pair.
func (c *Cookies) SetSession(w http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(w, c.cookie(AccessCookieName, pair.AccessToken, c.accessTTL))
	http.SetCookie(w, c.cookie(RefreshCookieName, pair.RefreshToken, c.refreshTTL))
}

// ApplyRefreshed persists a rotated pair onto the response.
// No-op when pair is nil, so handlers call it unconditionally on success.
func (c *Cookies) ApplyRefreshed(w http.ResponseWriter, pair *TokenPair) {
	if pair == nil {
		return
	}
	c.SetSession(w, pair)
}

// Clear strips both auth cookies; used when a session is unsalvageable.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.expired(AccessCookieName))
	http.SetCookie(w, c.expired(RefreshCookieName))
}

func (c *Cookies) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c *Cookies) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
