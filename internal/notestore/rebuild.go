package notestore

import (
	"encoding/json"
	"log/slog"

	"github.com/starford/vordr/internal/note"
)

// Rebuild regenerates index.json from the note files on disk. The index is
// only a cache, so this is the recovery path after any crash or concurrent
// writer race: scan every hash directory, re-derive its entry, write the
// index fresh. Corrupt note files are skipped with a log line.
func (s *Store) Rebuild() error {
	hashes, err := s.dir.NoteDirs()
	if err != nil {
		return ioErr("scan note dirs", err)
	}

	idx := newIndexFile()
	for _, hash := range hashes {
		rel := s.notePath(hash)
		if !s.dir.Exists(rel) {
			continue
		}
		data, err := s.dir.Read(rel)
		if err != nil {
			s.logger.Warn("rebuild: read failed", slog.String("hash", hash), slog.String("error", err.Error()))
			continue
		}
		var n note.Note
		if err := json.Unmarshal(data, &n); err != nil {
			s.logger.Warn("rebuild: unparsable note skipped", slog.String("hash", hash), slog.String("error", err.Error()))
			continue
		}
		if err := n.Validate(); err != nil {
			s.logger.Warn("rebuild: invalid note skipped", slog.String("hash", hash), slog.String("error", err.Error()))
			continue
		}

		summary := n.DesignIntent.Purpose
		if summary == "" {
			summary = noSummary
		}
		idx.Notes = append(idx.Notes, IndexEntry{
			FilePathHash:        hash,
			FilePath:            n.FilePath,
			CreatedAt:           n.CreatedAt,
			UpdatedAt:           n.UpdatedAt,
			DesignIntentSummary: summary,
			Critical:            n.RequiresAcknowledgment,
		})
	}

	if err := s.saveIndex(idx); err != nil {
		return ioErr("write index", err)
	}
	s.logger.Info("rebuild: index regenerated", slog.Int("notes", len(idx.Notes)))
	return nil
}
