package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/vordr/internal/audit"
	"github.com/starford/vordr/internal/conflict"
	"github.com/starford/vordr/internal/notestore"
	"github.com/starford/vordr/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	store    *notestore.Store
	auditLog *audit.Log
	broker   *sse.Broker
}

// NewHandler creates a new Handler. auditLog and broker may be nil
// (audit listing then returns empty, blocked checks are not broadcast).
func NewHandler(store *notestore.Store, auditLog *audit.Log, broker *sse.Broker) *Handler {
	return &Handler{store: store, auditLog: auditLog, broker: broker}
}

// ListNotes handles GET /notes: the index entries in stored order.
func (h *Handler) ListNotes(w http.ResponseWriter, _ *http.Request) {
	entries := h.store.List()
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: entries, Total: len(entries)})
}

// GetNote handles GET /notes/{hash}: the full note record for a path hash.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if hash == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("hash is required"))
		return
	}
	for _, e := range h.store.List() {
		if e.FilePathHash != hash {
			continue
		}
		n := h.store.Load(e.FilePath)
		if n == nil {
			break
		}
		writeJSON(w, http.StatusOK, n)
		return
	}
	writeJSON(w, http.StatusNotFound, errorBody("not found"))
}

// Check handles POST /check: run the conflict detector for a proposed
// change without going through the hook.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	n := h.store.Load(req.Path)
	if n == nil {
		writeJSON(w, http.StatusNotFound, errorBody("no note for path"))
		return
	}

	rep := conflict.Detect(n, req.NewContent, req.OldContent)
	decision := "allow"
	reason := "no conflicts"
	if rep.Frozen != nil {
		decision = "block"
		reason = "frozen section " + rep.Frozen.FrozenID
		if h.broker != nil {
			h.broker.PublishBlocked(req.Path, rep.Frozen.FrozenID)
		}
	}

	if h.auditLog != nil {
		err := h.auditLog.Record(audit.Decision{
			Tool:     "check",
			FilePath: req.Path,
			NoteHash: h.store.Resolver().Hash(req.Path),
			Decision: decision,
			Reason:   reason,
		})
		if err != nil {
			slog.Warn("check: audit record failed", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusOK, CheckResponse{Decision: decision, Report: rep})
}

// Audit handles GET /audit: the most recent enforcement decisions.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if h.auditLog == nil {
		writeJSON(w, http.StatusOK, map[string]any{"decisions": []audit.Decision{}})
		return
	}
	decisions, err := h.auditLog.Recent(limit)
	if err != nil {
		slog.Error("audit listing failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if decisions == nil {
		decisions = []audit.Decision{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}
