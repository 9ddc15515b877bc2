package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of backend-issued claims the gateway logs
type TokenClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Subject extracts a user identifier from a backend token for log
// correlation only. The signature is NOT verified and the result must never
// be used for access decisions. Opaque (non-JWT) tokens yield "".
func Subject(token string) string {
	if token == "" {
		return ""
	}

	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}

	if claims.Subject != "" {
		return claims.Subject
	}
	return claims.UserID
}
