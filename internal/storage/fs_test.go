package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func open(t *testing.T) *Dir {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "notes"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return d
}

func TestOpenCreatesLayout(t *testing.T) {
	d := open(t)
	for _, sub := range []string{".cache", ".audit"} {
		info, err := os.Stat(filepath.Join(d.Root(), sub))
		if err != nil || !info.IsDir() {
			t.Fatalf("layout dir %s missing: %v", sub, err)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	d := open(t)
	rel := filepath.Join("abc123", "note.json")

	if err := d.Write(rel, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !d.Exists(rel) {
		t.Fatal("written file reported as missing")
	}
	data, err := d.Read(rel)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("read back %q", data)
	}
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	d := open(t)
	rel := filepath.Join("abc123", "note.json")
	if err := d.Write(rel, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := d.Write(rel, []byte("two")); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(d.Root(), "abc123"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".vordr-tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}

	data, _ := d.Read(rel)
	if string(data) != "two" {
		t.Fatalf("overwrite lost: %q", data)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	d := open(t)
	for _, rel := range []string{"../escape.json", "a/../../escape.json", "/etc/passwd"} {
		if err := d.Write(rel, []byte("x")); err == nil {
			t.Fatalf("write accepted escaping path %q", rel)
		}
		if _, err := d.Read(rel); err == nil {
			t.Fatalf("read accepted escaping path %q", rel)
		}
	}
}

func TestRemoveDirIfEmpty(t *testing.T) {
	d := open(t)
	rel := filepath.Join("abc123", "note.json")
	if err := d.Write(rel, []byte("x")); err != nil {
		t.Fatal(err)
	}

	// Non-empty: left alone without error.
	if err := d.RemoveDirIfEmpty("abc123"); err != nil {
		t.Fatalf("non-empty dir: %v", err)
	}
	if !d.Exists(rel) {
		t.Fatal("non-empty dir was removed")
	}

	if err := d.Delete(rel); err != nil {
		t.Fatal(err)
	}
	if err := d.RemoveDirIfEmpty("abc123"); err != nil {
		t.Fatalf("empty dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(d.Root(), "abc123")); !os.IsNotExist(err) {
		t.Fatal("empty dir not removed")
	}
}

func TestNoteDirsSkipsLayoutDirs(t *testing.T) {
	d := open(t)
	if err := d.Write(filepath.Join("abc123", "note.json"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := d.Write(filepath.Join("def456", "note.json"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	dirs, err := d.NoteDirs()
	if err != nil {
		t.Fatal(err)
	}
	if len(dirs) != 2 {
		t.Fatalf("got %v, want the two hash dirs only", dirs)
	}
	for _, name := range dirs {
		if strings.HasPrefix(name, ".") {
			t.Fatalf("layout dir leaked into listing: %s", name)
		}
	}
}
