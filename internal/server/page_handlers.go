package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/devis-portal/gateway/internal/auth"
	"github.com/devis-portal/gateway/internal/locale"
	"github.com/devis-portal/gateway/internal/proxy"
)

// PageDescriptor is served for gated pages when no frontend is configured
type PageDescriptor struct {
	Locale string `json:"locale"`
	Path   string `json:"path"`
	Page   string `json:"page"`
	Role   string `json:"role,omitempty"`
}

// newPageHandler returns the handler pages are handed to once they pass the
// locale router and session gate, or nil for the JSON descriptor
func (s *Server) newPageHandler() (http.Handler, error) {
	if s.config.Frontend.URL == "" {
		return nil, nil
	}

	target, err := url.Parse(s.config.Frontend.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid frontend URL: %w", err)
	}

	rp := httputil.NewSingleHostReverseProxy(target)
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Frontend unreachable")
		status, envelope := proxy.Classify(fmt.Errorf("%w: %v", proxy.ErrUpstreamUnreachable, err))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(envelope); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to write error envelope")
		}
	}
	return rp, nil
}

// servePage is the last NoRoute handler
func (s *Server) servePage(c *gin.Context) {
	path := c.Request.URL.Path

	// Unknown API or asset path: nothing to gate or render
	if locale.Excluded(path) {
		c.JSON(http.StatusNotFound, proxy.Envelope{Message: "Not found"})
		return
	}

	if s.pages != nil {
		s.pages.ServeHTTP(c.Writer, c.Request)
		return
	}

	session, _ := auth.GetSession(c)
	l, rest, _ := locale.Split(path)

	c.JSON(http.StatusOK, PageDescriptor{
		Locale: string(l),
		Path:   path,
		Page:   rest,
		Role:   session.Role,
	})
}
