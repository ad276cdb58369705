/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Session:    Resolves X-Session-ID, issuing one when absent

ROUTE GROUPS:
  /api/upload           File ingestion
  /api/table/*          The wide table and cell edits
  /api/employees/*      Row management
  /api/programs/*       Column management
  /api/metrics/*        Margins, group utilization, summary
  /api/scenarios/*      Saved snapshots
  /api/undo             Single-step undo
  /api/reset            Session reset

SESSION MODEL:
  Every /api route runs under a session resolved from the X-Session-ID
  header. An absent or blank header gets a fresh UUID; the resolved id is
  always echoed back in the response header so clients can persist it.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

// SessionHeader carries the client's session id.
const SessionHeader = "X-Session-ID"

type ctxKey int

const sessionIDKey ctxKey = 0

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(sessionMiddleware)

		r.Post("/upload", h.Upload)
		r.Post("/undo", h.Undo)
		r.Post("/reset", h.Reset)

		r.Route("/table", func(r chi.Router) {
			r.Get("/", h.GetTable)
			r.Post("/cell", h.SetCell)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", h.AddEmployee)
			r.Delete("/{name}", h.RemoveEmployee)
		})

		r.Route("/programs", func(r chi.Router) {
			r.Post("/", h.AddProgram)
			r.Delete("/{name}", h.RemoveProgram)
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/margins", h.GetMargins)
			r.Get("/groups", h.GetGroups)
			r.Get("/summary", h.GetSummary)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/", h.SaveScenario)
			r.Post("/{id}/load", h.LoadScenario)
			r.Delete("/{id}", h.DeleteScenario)
		})
	})

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Staffing Allocation Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Staffing Allocation Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/table">/api/table</a> - The allocation table</li>
<li><a href="/api/metrics/margins">/api/metrics/margins</a> - Program margins</li>
<li><a href="/api/metrics/summary">/api/metrics/summary</a> - Team summary</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Saved scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}

// sessionMiddleware resolves the session id, issuing a fresh UUID when the
// header is absent, and echoes it back on every response.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(SessionHeader, id)
		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey).(string)
	return id
}
