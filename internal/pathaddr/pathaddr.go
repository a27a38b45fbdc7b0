// Package pathaddr maps arbitrary file paths to stable note storage
// locations. A path is normalized to canonical form, then addressed by the
// SHA-1 digest of the canonical string. Digests are memoized in an advisory
// on-disk cache that can always be rebuilt by recomputing.
package pathaddr

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// NotesDir is the notes root, relative to the project root.
	NotesDir = ".claude/notes"
	// cacheFile holds the path→hash memo, relative to the project root.
	cacheFile = ".claude/notes/.cache/path-hash-cache.json"

	cacheVersion = "1.0"
)

type cacheRecord struct {
	Version string            `json:"version"`
	Cache   map[string]string `json:"cache"`
}

// Resolver normalizes and addresses paths relative to one project root.
type Resolver struct {
	root  string
	cache map[string]string
}

// NewResolver creates a Resolver for the given project root. An empty root
// falls back to the current working directory. The hash cache is loaded
// eagerly; a missing or corrupt cache file is treated as empty.
func NewResolver(projectRoot string) *Resolver {
	if projectRoot == "" {
		projectRoot, _ = os.Getwd()
	}
	r := &Resolver{root: projectRoot, cache: map[string]string{}}
	r.loadCache()
	return r
}

// Root returns the project root this resolver is bound to.
func (r *Resolver) Root() string { return r.root }

// Normalize resolves a path to canonical form: relative paths are resolved
// against the project root, symlinks are resolved when the target exists,
// and separators are cleaned. Normalize is idempotent.
func (r *Resolver) Normalize(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	// EvalSymlinks fails for files that do not exist yet; plain cleaning
	// is the fallback so new files still address deterministically.
	return filepath.Clean(path)
}

// Hash returns the SHA-1 hex digest of the normalized path, memoized in the
// on-disk cache. The digest is a pure function of the canonical string, so a
// lost cache only costs recomputation.
func (r *Resolver) Hash(path string) string {
	normalized := r.Normalize(path)
	if h, ok := r.cache[normalized]; ok {
		return h
	}
	sum := sha1.Sum([]byte(normalized))
	h := hex.EncodeToString(sum[:])
	r.cache[normalized] = h
	r.saveCache()
	return h
}

// NoteDir returns the storage directory for a path:
// <root>/.claude/notes/<hash>.
func (r *Resolver) NoteDir(path string) string {
	return filepath.Join(r.root, NotesDir, r.Hash(path))
}

// NotePath returns the note record location for a path.
func (r *Resolver) NotePath(path string) string {
	return filepath.Join(r.NoteDir(path), "note.json")
}

// Exists reports whether a note record exists for the path.
func (r *Resolver) Exists(path string) bool {
	info, err := os.Stat(r.NotePath(path))
	return err == nil && !info.IsDir()
}

// ClearCache drops the in-memory memo and removes the cache file.
func (r *Resolver) ClearCache() {
	r.cache = map[string]string{}
	_ = os.Remove(filepath.Join(r.root, cacheFile))
}

func (r *Resolver) loadCache() {
	data, err := os.ReadFile(filepath.Join(r.root, cacheFile))
	if err != nil {
		return
	}
	var rec cacheRecord
	if err := json.Unmarshal(data, &rec); err != nil || rec.Cache == nil {
		// Corrupt cache: start fresh.
		return
	}
	r.cache = rec.Cache
}

// saveCache persists the memo. Failures are non-fatal: the cache is an
// optimization only.
func (r *Resolver) saveCache() {
	path := filepath.Join(r.root, cacheFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Debug("pathaddr: cache dir", slog.String("error", err.Error()))
		return
	}
	data, err := json.MarshalIndent(cacheRecord{Version: cacheVersion, Cache: r.cache}, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Debug("pathaddr: cache write", slog.String("error", err.Error()))
	}
}
