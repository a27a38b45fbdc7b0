package notestore

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/starford/vordr/internal/note"
)

const (
	indexFileName = "index.json"
	indexVersion  = "1.0"

	// noSummary is the placeholder used when a note has no stated purpose.
	noSummary = "No description"
)

// IndexEntry is the denormalized per-note summary used for fast listing.
// The index is a cache over the note files, never the source of truth.
type IndexEntry struct {
	FilePathHash        string    `json:"filePathHash"`
	FilePath            string    `json:"filePath"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	DesignIntentSummary string    `json:"designIntentSummary"`
	Critical            bool      `json:"critical"`
}

type indexFile struct {
	Version     string       `json:"version"`
	LastUpdated time.Time    `json:"lastUpdated"`
	Notes       []IndexEntry `json:"notes"`
}

func newIndexFile() *indexFile {
	return &indexFile{Version: indexVersion, LastUpdated: time.Now().UTC(), Notes: []IndexEntry{}}
}

// loadIndex reads index.json. A missing or unparsable index is treated as
// empty: the authoritative state lives in the note files and Rebuild can
// always regenerate the cache.
func (s *Store) loadIndex() *indexFile {
	data, err := s.dir.Read(indexFileName)
	if err != nil {
		return newIndexFile()
	}
	var idx indexFile
	if err := json.Unmarshal(data, &idx); err != nil {
		s.logger.Warn("notestore: index unreadable, treating as empty", slog.String("error", err.Error()))
		return newIndexFile()
	}
	if idx.Notes == nil {
		idx.Notes = []IndexEntry{}
	}
	return &idx
}

func (s *Store) saveIndex(idx *indexFile) error {
	idx.Version = indexVersion
	idx.LastUpdated = time.Now().UTC()
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return s.dir.Write(indexFileName, data)
}

// upsertIndexEntry mirrors a note into the index: existing entries (by path
// hash) are updated in place, new entries are appended, preserving order.
func (s *Store) upsertIndexEntry(n *note.Note) error {
	idx := s.loadIndex()
	hash := s.resolver.Hash(n.FilePath)
	summary := n.DesignIntent.Purpose
	if summary == "" {
		summary = noSummary
	}

	for i := range idx.Notes {
		if idx.Notes[i].FilePathHash == hash {
			idx.Notes[i].FilePath = n.FilePath
			idx.Notes[i].UpdatedAt = n.UpdatedAt
			idx.Notes[i].DesignIntentSummary = summary
			idx.Notes[i].Critical = n.RequiresAcknowledgment
			return s.saveIndex(idx)
		}
	}

	idx.Notes = append(idx.Notes, IndexEntry{
		FilePathHash:        hash,
		FilePath:            n.FilePath,
		CreatedAt:           n.CreatedAt,
		UpdatedAt:           n.UpdatedAt,
		DesignIntentSummary: summary,
		Critical:            n.RequiresAcknowledgment,
	})
	return s.saveIndex(idx)
}

func (s *Store) removeIndexEntry(hash string) error {
	idx := s.loadIndex()
	kept := idx.Notes[:0]
	for _, e := range idx.Notes {
		if e.FilePathHash != hash {
			kept = append(kept, e)
		}
	}
	idx.Notes = kept
	return s.saveIndex(idx)
}
