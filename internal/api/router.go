package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vordr/internal/audit"
	"github.com/starford/vordr/internal/notestore"
	"github.com/starford/vordr/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(store *notestore.Store, auditLog *audit.Log, broker *sse.Broker, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(store, auditLog, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes (read-only; authoring stays in the CLI).
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/{hash}", h.GetNote)

	// Conflict check.
	r.Post("/check", h.Check)

	// Enforcement audit trail.
	r.Get("/audit", h.Audit)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
