package locale

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Middleware redirects non-canonical paths to their Clean form and
// unprefixed page paths to their locale-qualified form, and records the
// locale of prefixed ones on the request context. Handlers after it only
// ever see clean paths.
func Middleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if cleaned := Clean(path); cleaned != path {
			target := (&url.URL{Path: cleaned, RawQuery: c.Request.URL.RawQuery}).String()

			log.Debug().
				Str("path", path).
				Str("location", target).
				Msg("Redirecting to clean path")

			c.Redirect(http.StatusTemporaryRedirect, target)
			c.Abort()
			return
		}

		if Excluded(path) {
			c.Next()
			return
		}

		if l, _, ok := Split(path); ok {
			c.Request = c.Request.WithContext(WithLocale(c.Request.Context(), l))
			c.Next()
			return
		}

		l := Resolve(c.Request)
		target := Prefix(l, path)
		if q := c.Request.URL.RawQuery; q != "" {
			target += "?" + q
		}

		log.Debug().
			Str("path", path).
			Str("locale", string(l)).
			Str("location", target).
			Msg("Redirecting to locale-prefixed path")

		c.Redirect(http.StatusTemporaryRedirect, target)
		c.Abort()
	}
}
