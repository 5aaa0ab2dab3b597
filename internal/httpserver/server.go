// internal/httpserver/server.go
//
// HTTP server wiring for the bowling backend.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, panic recovery, timeouts,
//     JSON, CORS).
//   - Public endpoints: "/", "/health", POST /api/auth/token.
//   - Game endpoints (require auth): GET/POST /api/games, GET /api/games/{id},
//     POST /api/games/{id}/throws.
//
// Notes:
//   - Every error response has the shape {"errors": ["message", ...]}.
//   - Domain error codes decide the status code (see statusFor).

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bowling/apps/go-server/internal/config"
	"github.com/robalobadob/bowling/apps/go-server/internal/tracker"
)

// Server bundles router, game tracker, and configuration.
type Server struct {
	r       *chi.Mux
	tracker *tracker.Tracker
	cfg     config.Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(t *tracker.Tracker, cfg config.Config) *Server {
	s := &Server{r: chi.NewRouter(), tracker: t, cfg: cfg}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))       // request-scoped logger
	s.r.Use(requestIDLogger)                   // tag request logs with the request id
	s.r.Use(hlog.AccessHandler(logAccess))     // one line per request
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses
	s.r.Use(s.cors)                            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", notFound)
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Token exchange is the only public /api route.
	s.r.Post("/api/auth/token", s.handleToken)

	s.r.Route("/api/games", func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/", s.handleListGames)
		r.Post("/", s.handleCreateGame)
		r.Get("/{id}", s.handleShowGame)
		r.Post("/{id}/throws", s.handleCreateThrow)
	})

	s.r.NotFound(notFound)
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrors(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return s
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDLogger adds chi's request id to the request-scoped logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("requestId", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func logAccess(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// notFound is the JSON 404 used for the root and unknown routes.
func notFound(w http.ResponseWriter, r *http.Request) {
	writeErrors(w, http.StatusNotFound, "Not found")
}
