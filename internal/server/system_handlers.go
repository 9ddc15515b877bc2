package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) healthCheck(c *gin.Context) {
	resp := gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "devis-gateway",
		"version":   s.version,
		"backend":   s.forwarder.BaseURL(),
	}

	// Reported, never enforced: the gateway stays up when the backend is down
	if last := s.prober.Last(); last != nil {
		resp["upstream"] = last
	}

	c.JSON(http.StatusOK, resp)
}
