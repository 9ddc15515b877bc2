package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	"github.com/devis-portal/gateway/internal/auth"
	"github.com/devis-portal/gateway/internal/proxy"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware makes sure every request carries an id the backend sees too
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = ulid.Make().String()
			c.Request.Header.Set(requestIDHeader, id)
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)
		session := auth.FromRequest(c.Request)

		event := s.logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = s.logger.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString("request_id")).
			Str("role", session.Role).
			Str("user", auth.Subject(session.Token)).
			Msg("HTTP request")
	}
}

// recoveryHandler answers a panic with the standard 500 envelope
func (s *Server) recoveryHandler(c *gin.Context, recovered any) {
	s.logger.Error().
		Interface("panic", recovered).
		Str("path", c.Request.URL.Path).
		Msg("Recovered from panic")

	status, envelope := proxy.Classify(nil)
	c.AbortWithStatusJSON(status, envelope)
}

func (s *Server) respondWithError(c *gin.Context, route string, err error) {
	status, envelope := proxy.Classify(err)

	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).Str("route", route).Int("status", status).Msg(envelope.Message)

	c.JSON(status, envelope)
	c.Abort()
}
