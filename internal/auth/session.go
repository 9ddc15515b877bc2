package auth

import (
	"net/http"
	"time"
)

const (
	// TokenCookie carries the opaque bearer credential issued by the backend
	TokenCookie = "token"
	// RoleCookie carries the literal role string issued by the backend
	RoleCookie = "role"

	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Session is the cookie pair read from a browser request.
// Nothing here is verified; presence and the literal role are the only signals.
type Session struct {
	Token string `json:"-"`
	Role  string `json:"role,omitempty"`
}

// FromRequest reads the session cookie pair
func FromRequest(r *http.Request) Session {
	var s Session
	if c, err := r.Cookie(TokenCookie); err == nil {
		s.Token = c.Value
	}
	if c, err := r.Cookie(RoleCookie); err == nil {
		s.Role = c.Value
	}
	return s
}

// Authenticated reports whether a token cookie was present and non-empty
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// BearerHeader returns the Authorization header value for the token
func (s Session) BearerHeader() string {
	return "Bearer " + s.Token
}

// ClearCookies expires both session cookies on w
func ClearCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{TokenCookie, RoleCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: name == TokenCookie,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
