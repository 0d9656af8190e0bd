package app

import (
	"context"
	"net/http"
	"time"

	"booksvc/internal/book"
	"booksvc/internal/config"
	"booksvc/internal/httpx"
)

// Server is the assembled HTTP handler together with the resources it owns.
type Server struct {
	Handler http.Handler
	limiter *httpx.RateLimitMiddleware
}

// Close stops background work started by the middleware.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// NewServer wires the book routes, the health endpoints and the middleware
// stack around service.
func NewServer(cfg config.Config, service *book.Service) *Server {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := service.Ready(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	book.NewHTTPHandler(service).Register(router)

	middlewares := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
	}

	srv := &Server{}
	if cfg.RateLimitRPS > 0 {
		srv.limiter = httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
		middlewares = append(middlewares, srv.limiter.Middleware)
	}
	middlewares = append(middlewares, httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes))

	srv.Handler = httpx.Chain(router, middlewares...)
	return srv
}
