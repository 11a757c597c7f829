package collect

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// RouterOptions tune the collection router.
type RouterOptions struct {
	AllowedOrigins []string
	IngestRPS      float64
	IngestBurst    int
}

// NewRouter creates a chi router with all collection endpoints.
func NewRouter(handler *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	// middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// health check
	r.Get("/health", handler.Health)

	// directory resource, same data under both paths (main page and
	// redirect page resolve it relatively)
	r.Get("/banks.json", handler.ListBanks)

	// api routes
	r.Route("/api", func(r chi.Router) {
		r.With(RateLimit(opts.IngestRPS, opts.IngestBurst)).
			Post("/webapp", handler.CollectEvent)

		r.Get("/banks", handler.ListBanks)
		r.Get("/stats", handler.GetStats)
	})

	return r
}

// RateLimit bounds the ingest rate across all senders. Zero rps disables
// the limit.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst <= 0 {
		burst = 1
	}

	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respondError(w, http.StatusTooManyRequests, "too many events")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
