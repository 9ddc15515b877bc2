package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, FromRequest(req).Authenticated())

	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "opaque"})
	req.AddCookie(&http.Cookie{Name: RoleCookie, Value: RoleAdmin})

	s := FromRequest(req)
	assert.True(t, s.Authenticated())
	assert.Equal(t, RoleAdmin, s.Role)
	assert.Equal(t, "Bearer opaque", s.BearerHeader())
}

func TestFromRequest_EmptyTokenIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: ""})

	assert.False(t, FromRequest(req).Authenticated())
}

func TestClearCookies(t *testing.T) {
	w := httptest.NewRecorder()
	ClearCookies(w, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)

	names := map[string]bool{}
	for _, c := range cookies {
		names[c.Name] = true
		assert.Empty(t, c.Value)
		assert.Equal(t, "/", c.Path)
		assert.True(t, c.Expires.Before(time.Now()), "cookie %s must carry an expired date", c.Name)
		assert.True(t, c.MaxAge < 0, "cookie %s must be deleted", c.Name)
		assert.True(t, c.Secure)
	}
	assert.True(t, names[TokenCookie])
	assert.True(t, names[RoleCookie])
}

func TestSubject(t *testing.T) {
	// Signed with a key the gateway never sees; only decoding matters
	signed := func(claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
		require.NoError(t, err)
		return token
	}

	assert.Equal(t, "user-1", Subject(signed(jwt.RegisteredClaims{Subject: "user-1"})))
	assert.Equal(t, "42", Subject(signed(TokenClaims{UserID: "42", Role: RoleClient})))
	assert.Empty(t, Subject("not-a-jwt"))
	assert.Empty(t, Subject(""))
}
