package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ichfliegemitdemflugzeug/bankhop/internal/collect"
)

// Config holds server configuration
type Config struct {
	Port           int
	StaticDir      string // mini app pages and bank logos
	AllowedOrigins []string
	IngestRPS      float64
	IngestBurst    int
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     *Config
	listener   net.Listener
	hub        *Hub
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config, hub *Hub) *Server {
	router := chi.NewRouter()

	srv := &Server{
		router: router,
		config: cfg,
		hub:    hub,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(middleware.Compress(5))

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
}

func (s *Server) setupRoutes() {
	// mini app static pages (index, redirect, logos)
	if s.config.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.config.StaticDir))
		s.router.Handle("/app/*", http.StripPrefix("/app/", fileServer))
	}

	// live event feed
	if s.hub != nil {
		s.router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.hub, w, r)
		})
	}

	// Health endpoint
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok","version":"dev"}`)); err != nil {
			_ = err // Client disconnected
		}
	})
}

// RegisterCollectHandler registers the event collection API handlers.
func (s *Server) RegisterCollectHandler(handler interface{}) {
	type collectHandler interface {
		CollectEvent(w http.ResponseWriter, r *http.Request)
		ListBanks(w http.ResponseWriter, r *http.Request)
		GetStats(w http.ResponseWriter, r *http.Request)
	}

	if h, ok := handler.(collectHandler); ok {
		ingestLimit := collect.RateLimit(s.config.IngestRPS, s.config.IngestBurst)

		s.router.Route("/api", func(r chi.Router) {
			r.With(ingestLimit).Post("/webapp", h.CollectEvent)
			r.Get("/banks", h.ListBanks)
			r.Get("/stats", h.GetStats)
		})

		// the directory resource lives at the root so both pages can
		// resolve it with a relative path
		s.router.Get("/banks.json", h.ListBanks)
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s.httpServer.Serve(listener)
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// BaseURL returns the server's base URL
func (s *Server) BaseURL() string {
	if s.listener != nil {
		return fmt.Sprintf("http://%s", s.listener.Addr().String())
	}
	return fmt.Sprintf("http://localhost:%d", s.config.Port)
}

// Router returns the underlying Chi router for external route mounting.
func (s *Server) Router() *chi.Mux {
	return s.router
}
