package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devis-portal/gateway/internal/auth"
	"github.com/devis-portal/gateway/internal/proxy"
)

// proxyRoute forwards one browser request to the backend and relays the
// backend's status, body and content type unchanged.
func (s *Server) proxyRoute(route proxy.Route) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		params, err := route.BindParams(c.Param, s.validator)
		if err != nil {
			s.reject(c, route, err)
			return
		}

		out, err := proxy.Prepare(route, c.Request, params, s.validator)
		if err != nil {
			s.reject(c, route, err)
			return
		}

		up, err := s.forwarder.Forward(c.Request.Context(), out)
		if err != nil {
			status, _ := proxy.Classify(err)
			s.metrics.ObserveProxy(route.Name, status, time.Since(start))
			s.respondWithError(c, route.Name, err)
			return
		}

		s.metrics.ObserveProxy(route.Name, up.StatusCode, time.Since(start))

		s.logger.Debug().
			Str("route", route.Name).
			Str("upstream", out.Method+" "+out.Path).
			Int("status", up.StatusCode).
			Int("bytes", len(up.Body)).
			Msg("Relayed upstream response")

		proxy.Relay(up, route, c.Writer.Header())
		c.Status(up.StatusCode)
		if len(up.Body) > 0 && bodyAllowed(c.Request.Method, up.StatusCode) {
			if _, err := c.Writer.Write(up.Body); err != nil {
				s.logger.Warn().Err(err).Str("route", route.Name).Msg("Failed to write response body")
			}
		}
	}
}

// reject answers a request refused before any upstream call
func (s *Server) reject(c *gin.Context, route proxy.Route, err error) {
	status, _ := proxy.Classify(err)
	s.metrics.CountProxy(route.Name, status)
	s.respondWithError(c, route.Name, err)
}

func bodyAllowed(method string, status int) bool {
	if method == http.MethodHead {
		return false
	}
	return status != http.StatusNoContent && status != http.StatusNotModified && status >= 200
}

// logout expires both session cookies; the backend is not involved
func (s *Server) logout(c *gin.Context) {
	auth.ClearCookies(c.Writer, s.config.Server.SecureCookies)

	s.logger.Info().
		Str("request_id", c.GetString("request_id")).
		Msg("Session cookies cleared")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}
