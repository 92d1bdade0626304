package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/purochile/pcbot/internal/logger"
)

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Limiter throttles /api/v1 per client IP. Nil disables throttling.
	Limiter RateLimiter

	// TrustedProxies may set X-Forwarded-For and X-Real-IP for the limiter
	TrustedProxies []string

	// CORSOrigins lists browser origins allowed to call the API
	CORSOrigins []string
}

// Server is the keep-alive HTTP server. It optionally mounts the
// authenticated read API under /api/v1.
type Server struct {
	server *http.Server
	log    logger.Logger
}

// NewServer creates a new HTTP server. api and auth may both be nil to serve
// only the keep-alive routes.
func NewServer(config ServerConfig, api *APIHandler, auth *AuthMiddleware, log logger.Logger) *Server {
	log = log.WithFields(map[string]interface{}{"component": "http.server"})
	router := mux.NewRouter()

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Bot is alive!"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		success(w, "ok", map[string]string{"status": "ok"})
	}).Methods("GET")

	if api != nil && auth != nil {
		v1 := router.PathPrefix("/api/v1").Subrouter()
		if config.Limiter != nil {
			v1.Use(rateLimitMiddleware(config.Limiter, config.TrustedProxies, log))
		}
		v1.Use(auth.RequireAuth)
		api.RegisterRoutes(v1)
	}

	router.Use(correlationMiddleware)
	router.Use(loggingMiddleware(log))
	router.Use(recoveryMiddleware(log))

	var handler http.Handler = router
	if len(config.CORSOrigins) > 0 {
		handler = corsMiddleware(router, config.CORSOrigins)
	}

	return &Server{
		log: log,
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Handler returns the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "starting HTTP server", map[string]interface{}{"addr": s.server.Addr})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
