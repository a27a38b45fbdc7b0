// Package notestore persists design intent notes, one JSON record per
// path-hash directory under the notes root, plus a denormalized listing
// index. Reads are fail-safe: a corrupt note is reported as absent rather
// than surfaced as an error, so the hook path can never crash on bad data.
package notestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/starford/vordr/internal/apperr"
	"github.com/starford/vordr/internal/note"
	"github.com/starford/vordr/internal/pathaddr"
	"github.com/starford/vordr/internal/storage"
)

const noteFileName = "note.json"

// Store is the note persistence layer for one project root.
type Store struct {
	resolver *pathaddr.Resolver
	dir      *storage.Dir
	logger   *slog.Logger
}

// Open creates a Store rooted at projectRoot, bootstrapping the notes
// directory layout.
func Open(projectRoot string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	resolver := pathaddr.NewResolver(projectRoot)
	dir, err := storage.Open(filepath.Join(resolver.Root(), pathaddr.NotesDir))
	if err != nil {
		return nil, err
	}
	s := &Store{resolver: resolver, dir: dir, logger: logger}
	if !dir.Exists(indexFileName) {
		if err := s.saveIndex(newIndexFile()); err != nil {
			return nil, ioErr("init index", err)
		}
	}
	return s, nil
}

// Resolver exposes the path addressing used by this store.
func (s *Store) Resolver() *pathaddr.Resolver { return s.resolver }

// Root returns the absolute notes root directory.
func (s *Store) Root() string { return s.dir.Root() }

func (s *Store) notePath(hash string) string {
	return filepath.Join(hash, noteFileName)
}

// Create writes a new note for path. It fails with ErrAlreadyExists when the
// normalized path is already noted. The note file and its index entry are
// written all-or-nothing: an index failure rolls back the note file.
func (s *Store) Create(path string, n *note.Note) error {
	normalized := s.resolver.Normalize(path)
	if s.resolver.Exists(normalized) {
		return fmt.Errorf("notestore: note for %s: %w", path, apperr.ErrAlreadyExists)
	}

	n.FilePath = normalized
	if err := n.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("notestore: encode note: %w", err)
	}

	hash := s.resolver.Hash(normalized)
	rel := s.notePath(hash)
	if err := s.dir.Write(rel, data); err != nil {
		return ioErr("write note", err)
	}

	if err := s.upsertIndexEntry(n); err != nil {
		// Roll back the note file so create stays all-or-nothing.
		_ = s.dir.Delete(rel)
		_ = s.dir.RemoveDirIfEmpty(hash)
		return ioErr("update index", err)
	}
	return nil
}

// Load returns the note for path, or nil when none exists. A note file that
// fails to parse or validate is logged and reported as absent.
func (s *Store) Load(path string) *note.Note {
	normalized := s.resolver.Normalize(path)
	rel := s.notePath(s.resolver.Hash(normalized))
	if !s.dir.Exists(rel) {
		return nil
	}

	data, err := s.dir.Read(rel)
	if err != nil {
		s.logger.Warn("notestore: read note failed", slog.String("path", normalized), slog.String("error", err.Error()))
		return nil
	}

	var n note.Note
	if err := json.Unmarshal(data, &n); err != nil {
		s.logger.Warn("notestore: note unparsable", slog.String("path", normalized), slog.String("error", err.Error()))
		return nil
	}
	if err := n.Validate(); err != nil {
		s.logger.Warn("notestore: note invalid", slog.String("path", normalized), slog.String("error", err.Error()))
		return nil
	}
	return &n
}

// Update rewrites the note for an existing path, stamping updatedAt.
func (s *Store) Update(path string, n *note.Note) error {
	normalized := s.resolver.Normalize(path)
	if !s.resolver.Exists(normalized) {
		return fmt.Errorf("notestore: note for %s: %w", path, apperr.ErrNotFound)
	}

	n.FilePath = normalized
	n.UpdatedAt = time.Now().UTC()
	if err := n.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fmt.Errorf("notestore: encode note: %w", err)
	}
	if err := s.dir.Write(s.notePath(s.resolver.Hash(normalized)), data); err != nil {
		return ioErr("write note", err)
	}
	if err := s.upsertIndexEntry(n); err != nil {
		return ioErr("update index", err)
	}
	return nil
}

// Delete removes the note for path, its directory when empty, and its index
// entry.
func (s *Store) Delete(path string) error {
	normalized := s.resolver.Normalize(path)
	if !s.resolver.Exists(normalized) {
		return fmt.Errorf("notestore: note for %s: %w", path, apperr.ErrNotFound)
	}

	hash := s.resolver.Hash(normalized)
	if err := s.dir.Delete(s.notePath(hash)); err != nil {
		return ioErr("delete note", err)
	}
	if err := s.dir.RemoveDirIfEmpty(hash); err != nil {
		s.logger.Warn("notestore: remove note dir", slog.String("error", err.Error()))
	}
	if err := s.removeIndexEntry(hash); err != nil {
		return ioErr("update index", err)
	}
	return nil
}

// List returns the index entries in stored order.
func (s *Store) List() []IndexEntry {
	return s.loadIndex().Notes
}

// Migrate moves a note from oldPath to newPath (file rename), appending a
// migration-history entry. Create-at-new uses full create semantics; if the
// old note cannot be deleted afterwards, the new note is removed again so
// migrate is all-or-nothing across both locations.
func (s *Store) Migrate(oldPath, newPath string) error {
	n := s.Load(oldPath)
	if n == nil {
		return fmt.Errorf("notestore: note for %s: %w", oldPath, apperr.ErrNotFound)
	}

	now := time.Now().UTC()
	n.UpdatedAt = now
	n.MigrationHistory = append(n.MigrationHistory, note.MigrationEntry{
		Timestamp: now,
		OldPath:   oldPath,
		NewPath:   newPath,
	})

	if err := s.Create(newPath, n); err != nil {
		return fmt.Errorf("notestore: migrate create: %w", err)
	}
	if err := s.Delete(oldPath); err != nil {
		// Restore the pre-migrate state.
		_ = s.Delete(newPath)
		return fmt.Errorf("notestore: migrate delete old: %w", err)
	}
	return nil
}

func ioErr(op string, err error) error {
	return fmt.Errorf("notestore: %s: %v: %w", op, err, apperr.ErrIOFailure)
}
