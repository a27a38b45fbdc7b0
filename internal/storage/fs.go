// Package storage is the file-system layer under the notes root. All paths
// are relative to the root; writes are atomic (tmp file → fsync → rename).
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout subdirectories created under the notes root. The audit directory is
// reserved for the decision log; cache holds the path-hash memo.
var layoutDirs = []string{".cache", ".audit"}

// Dir provides file operations rooted at the notes directory.
type Dir struct {
	root string // absolute path to the notes root
}

// Open binds a Dir to the notes root, creating the directory layout
// (root, .cache, .audit) if missing.
func Open(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	for _, d := range layoutDirs {
		if err := os.MkdirAll(filepath.Join(abs, d), 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", d, err)
		}
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute notes root.
func (d *Dir) Root() string { return d.root }

// safePath resolves a relative path against the root and rejects any result
// that escapes it (directory traversal).
func (d *Dir) safePath(rel string) (string, error) {
	if rel == "" {
		return d.root, nil
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(d.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) && abs != d.root {
		return "", fmt.Errorf("storage: path escapes notes root: %s", rel)
	}
	return abs, nil
}

// Exists reports whether a regular file exists at rel.
func (d *Dir) Exists(rel string) bool {
	abs, err := d.safePath(rel)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// Read returns the raw bytes of the file at rel.
func (d *Dir) Read(rel string) ([]byte, error) {
	abs, err := d.safePath(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (d *Dir) Write(rel string, content []byte) error {
	abs, err := d.safePath(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vordr-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the file at rel.
func (d *Dir) Delete(rel string) error {
	abs, err := d.safePath(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", rel, err)
	}
	return nil
}

// RemoveDirIfEmpty removes the directory at rel when it contains nothing.
// A non-empty directory is left alone without error.
func (d *Dir) RemoveDirIfEmpty(rel string) error {
	abs, err := d.safePath(rel)
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("storage: read dir %s: %w", rel, err)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: remove dir %s: %w", rel, err)
	}
	return nil
}

// NoteDirs lists the hash directories directly under the root, skipping the
// dot-prefixed layout directories. Order follows the directory listing.
func (d *Dir) NoteDirs() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list note dirs: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	return out, nil
}
