// Package testutil provides shared helpers for tests.
package testutil

import (
	"log/slog"
	"testing"

	"github.com/starford/vordr/internal/note"
	"github.com/starford/vordr/internal/notestore"
)

// Logger returns a logger that discards nothing but stays quiet below warn.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

// TempStore creates a note store rooted at a fresh temp directory and returns
// it together with the project root.
func TempStore(t *testing.T) (*notestore.Store, string) {
	t.Helper()
	root := t.TempDir()
	store, err := notestore.Open(root, Logger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, root
}

// SampleNote returns a minimal valid note for filePath.
func SampleNote(filePath string) *note.Note {
	n := note.New(filePath)
	n.DesignIntent.Purpose = "Event handler registry"
	n.DesignIntent.KeyDecisions = []string{"Synchronous dispatch"}
	n.DesignIntent.Rationale = "Ordering must be deterministic"
	return n
}

// GuardedNote returns a note carrying a critical assumption and a frozen
// section, the shape that triggers strict acknowledgment.
func GuardedNote(filePath string) *note.Note {
	n := SampleNote(filePath)
	n.Assumptions = append(n.Assumptions, note.Assumption{
		ID:       "a1",
		Text:     "Dispatch is synchronous and single-threaded",
		Severity: note.SeverityCritical,
	})
	n.FrozenSections = append(n.FrozenSections, note.FrozenSection{
		ID:      "f1",
		Reason:  "Public contract",
		Pattern: `export interface Config`,
	})
	return n
}
