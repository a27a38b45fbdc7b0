package api

import (
	"github.com/starford/vordr/internal/conflict"
	"github.com/starford/vordr/internal/notestore"
)

// NoteListResponse wraps the note index listing.
type NoteListResponse struct {
	Notes []notestore.IndexEntry `json:"notes"`
	Total int                    `json:"total"`
}

// CheckRequest is the body for POST /check: a proposed change to evaluate
// against the note attached to path. OldContent may be empty when no prior
// version exists.
type CheckRequest struct {
	Path       string `json:"path"`
	NewContent string `json:"newContent"`
	OldContent string `json:"oldContent,omitempty"`
}

// CheckResponse carries the conflict report plus the three-way decision the
// hook would have made ("block" on a frozen violation, otherwise "allow").
type CheckResponse struct {
	Decision string          `json:"decision"`
	Report   conflict.Report `json:"report"`
}
