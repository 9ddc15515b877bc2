package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/devis-portal/gateway/internal/locale"
)

// Action is what the gate does with a page request
type Action int

const (
	Continue Action = iota
	Redirect
)

// Gate outcomes, also used as metric labels
const (
	OutcomeContinue     = "continue"
	OutcomeLogin        = "login"
	OutcomeUnauthorized = "unauthorized"
)

// Decision is the result of evaluating one request against the gate
type Decision struct {
	Action   Action
	Location string
	Outcome  string
}

// Observer receives every gate outcome
type Observer interface {
	ObserveGate(outcome string)
}

// protectedAreas maps the path area under a locale to the role it requires
var protectedAreas = map[string]string{
	"/admin":  RoleAdmin,
	"/client": RoleClient,
}

// Decide evaluates a page path against the session cookie pair. The path is
// judged in its clean form, so "/fr//admin" is as protected as "/fr/admin".
// Paths without a locale segment are never protected here; the locale
// middleware prefixes them first.
func Decide(path string, s Session) Decision {
	l, rest, ok := locale.Split(locale.Clean(path))
	if !ok {
		return Decision{Action: Continue, Outcome: OutcomeContinue}
	}

	required, protected := requiredRole(rest)
	if !protected {
		return Decision{Action: Continue, Outcome: OutcomeContinue}
	}

	if !s.Authenticated() {
		return Decision{
			Action:   Redirect,
			Location: locale.Prefix(l, "/login"),
			Outcome:  OutcomeLogin,
		}
	}

	if s.Role != required {
		return Decision{
			Action:   Redirect,
			Location: locale.Prefix(l, "/unauthorized"),
			Outcome:  OutcomeUnauthorized,
		}
	}

	return Decision{Action: Continue, Outcome: OutcomeContinue}
}

func requiredRole(rest string) (string, bool) {
	for area, role := range protectedAreas {
		if rest == area || strings.HasPrefix(rest, area+"/") {
			return role, true
		}
	}
	return "", false
}

// GateMiddleware redirects page requests that fail the session gate
func GateMiddleware(log zerolog.Logger, obs Observer) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := FromRequest(c.Request)
		decision := Decide(c.Request.URL.Path, session)

		if obs != nil {
			obs.ObserveGate(decision.Outcome)
		}

		if decision.Action == Continue {
			c.Set(sessionKey, session)
			c.Next()
			return
		}

		log.Info().
			Str("path", c.Request.URL.Path).
			Str("role", session.Role).
			Str("outcome", decision.Outcome).
			Str("location", decision.Location).
			Msg("Session gate redirect")

		c.Redirect(http.StatusTemporaryRedirect, decision.Location)
		c.Abort()
	}
}

const sessionKey = "session"

// GetSession returns the session stored by GateMiddleware
func GetSession(c *gin.Context) (Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
