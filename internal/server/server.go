// Package server
//
// Gateway in front of the devis portal: locale-prefixed pages behind the
// session gate, and /api proxy routes forwarding to the backend API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/devis-portal/gateway/internal/auth"
	"github.com/devis-portal/gateway/internal/config"
	"github.com/devis-portal/gateway/internal/locale"
	"github.com/devis-portal/gateway/internal/metrics"
	"github.com/devis-portal/gateway/internal/probe"
	"github.com/devis-portal/gateway/internal/proxy"
)

// Server represents the HTTP gateway
type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    zerolog.Logger
	validator *validator.Validate
	forwarder *proxy.Forwarder
	routes    []proxy.Route
	metrics   *metrics.Metrics
	prober    *probe.Prober
	pages     http.Handler
	version   string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	validate := proxy.NewValidator()

	// Route table: built-in unless a YAML file overrides it
	routes := proxy.DefaultRoutes()
	if cfg.Backend.RoutesFile != "" {
		loaded, err := proxy.LoadRoutes(cfg.Backend.RoutesFile, validate)
		if err != nil {
			return nil, err
		}
		routes = loaded
		zlog.Info().Str("file", cfg.Backend.RoutesFile).Int("routes", len(routes)).Msg("Loaded route table")
	}

	m := metrics.New()

	server := &Server{
		config:    cfg,
		logger:    zlog,
		validator: validate,
		forwarder: proxy.NewForwarder(cfg.Backend.URL, cfg.Backend.Timeout),
		routes:    routes,
		metrics:   m,
		prober:    probe.New(cfg.Backend.URL, cfg.Probe.Path, cfg.Backend.Timeout, m, zlog),
		version:   version,
	}

	pages, err := server.newPageHandler()
	if err != nil {
		return nil, err
	}
	server.pages = pages

	if err := server.setupRouter(); err != nil {
		return nil, err
	}

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() (err error) {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// gin panics on conflicting registrations, which a custom route table can cause
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid route table: %v", r)
		}
	}()

	s.router.Use(gin.CustomRecovery(s.recoveryHandler))
	s.router.Use(requestIDMiddleware())
	s.router.Use(s.loggingMiddleware())

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router.POST("/api/logout", s.logout)

	for _, route := range s.routes {
		handler := s.proxyRoute(route)
		if route.Method == proxy.MethodAny {
			s.router.Any(route.Path, handler)
		} else {
			s.router.Handle(route.Method, route.Path, handler)
		}
	}

	// Everything else is a page: locale prefix first, then the session gate
	s.router.NoRoute(
		locale.Middleware(s.logger),
		auth.GateMiddleware(s.logger, s.metrics),
		s.servePage,
	)

	return nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM
func (s *Server) Start() error {
	port := ":" + s.config.Server.Port

	if s.config.Probe.Schedule != "" {
		if err := s.prober.Start(s.config.Probe.Schedule); err != nil {
			return err
		}
		defer s.prober.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Long enough for the slowest upstream call plus relay
		WriteTimeout: s.config.Backend.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().
			Str("port", port).
			Str("backend", s.config.Backend.URL).
			Int("routes", len(s.routes)).
			Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		return err
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
