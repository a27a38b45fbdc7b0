package hook

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/vordr/internal/note"
	"github.com/starford/vordr/internal/testutil"
)

func runHook(t *testing.T, input map[string]any) (code int, stdout, stderr string) {
	t.Helper()
	payload, err := json.Marshal(input)
	if err != nil {
		t.Fatal(err)
	}
	var out, errw bytes.Buffer
	code = NewRunner(testutil.Logger()).Run(bytes.NewReader(payload), &out, &errw)
	return code, out.String(), errw.String()
}

func decodeResponse(t *testing.T, raw string) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("response not valid JSON: %v\n%s", err, raw)
	}
	return resp
}

func TestGarbageInputAllows(t *testing.T) {
	var out, errw bytes.Buffer
	code := NewRunner(testutil.Logger()).Run(strings.NewReader("{not json"), &out, &errw)
	if code != ExitAllowed {
		t.Fatalf("exit = %d, want allow", code)
	}
	if resp := decodeResponse(t, out.String()); resp.Decision != "allow" {
		t.Fatalf("decision = %q", resp.Decision)
	}
}

func TestNoFilePathAllows(t *testing.T) {
	code, stdout, _ := runHook(t, map[string]any{
		"tool_name":  "Bash",
		"tool_input": map[string]any{"command": "ls"},
		"cwd":        t.TempDir(),
	})
	if code != ExitAllowed {
		t.Fatalf("exit = %d, want allow", code)
	}
	if resp := decodeResponse(t, stdout); resp.Decision != "allow" {
		t.Fatalf("decision = %q", resp.Decision)
	}
}

func TestNoNoteAllowsWithoutContext(t *testing.T) {
	root := t.TempDir()
	code, stdout, _ := runHook(t, map[string]any{
		"tool_name":  "Write",
		"tool_input": map[string]any{"file_path": filepath.Join(root, "plain.ts"), "content": "x"},
		"cwd":        root,
	})
	if code != ExitAllowed {
		t.Fatalf("exit = %d, want allow", code)
	}
	resp := decodeResponse(t, stdout)
	if resp.AdditionalContext != "" {
		t.Fatal("context injected for a file with no note")
	}
}

func TestNotedFileAllowsWithContext(t *testing.T) {
	store, root := testutil.TempStore(t)
	target := filepath.Join(root, "src", "handler.ts")
	if err := store.Create(target, testutil.SampleNote(target)); err != nil {
		t.Fatal(err)
	}

	code, stdout, _ := runHook(t, map[string]any{
		"tool_name":  "Write",
		"tool_input": map[string]any{"file_path": target, "content": "const x = 1"},
		"cwd":        root,
	})
	if code != ExitAllowed {
		t.Fatalf("exit = %d, want allow", code)
	}
	resp := decodeResponse(t, stdout)
	if resp.Decision != "allow" || !resp.Continue {
		t.Fatalf("response %+v", resp)
	}
	if !strings.Contains(resp.AdditionalContext, "DESIGN INTENT NOTE DETECTED") {
		t.Fatal("note context not injected")
	}
	if !strings.Contains(resp.SystemMessage, "handler.ts") {
		t.Fatalf("system message = %q", resp.SystemMessage)
	}
}

func TestFrozenViolationBlocks(t *testing.T) {
	store, root := testutil.TempStore(t)
	target := filepath.Join(root, "src", "config.ts")

	n := testutil.SampleNote(target)
	n.FrozenSections = []note.FrozenSection{{
		ID:      "f1",
		Reason:  "Public contract",
		Pattern: `export interface Config[^}]*\}`,
	}}
	if err := store.Create(target, n); err != nil {
		t.Fatal(err)
	}

	// The prior version is read from disk for whole-file writes.
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatal(err)
	}
	oldContent := "export interface Config {\n  host: string;\n}\n"
	if err := os.WriteFile(target, []byte(oldContent), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runHook(t, map[string]any{
		"tool_name":  "Write",
		"tool_input": map[string]any{"file_path": target, "content": "export interface Config {\n  host: number;\n}\n"},
		"cwd":        root,
	})
	if code != ExitBlocked {
		t.Fatalf("exit = %d, want %d", code, ExitBlocked)
	}
	if stdout != "" {
		t.Fatalf("block decision leaked to stdout: %s", stdout)
	}
	resp := decodeResponse(t, stderr)
	if resp.Decision != "block" || !resp.Blocked {
		t.Fatalf("response %+v", resp)
	}
	if !strings.Contains(resp.Reason, "FROZEN SECTION VIOLATION") || !strings.Contains(resp.Reason, "f1") {
		t.Fatalf("reason = %q", resp.Reason)
	}
}

func TestEditToolUsesOldAndNewStrings(t *testing.T) {
	store, root := testutil.TempStore(t)
	target := filepath.Join(root, "src", "config.ts")

	n := testutil.SampleNote(target)
	n.FrozenSections = []note.FrozenSection{{
		ID:      "f1",
		Reason:  "Public contract",
		Pattern: `export interface Config[^}]*\}`,
	}}
	if err := store.Create(target, n); err != nil {
		t.Fatal(err)
	}

	code, _, _ := runHook(t, map[string]any{
		"tool_name": "Edit",
		"tool_input": map[string]any{
			"path":       target,
			"old_string": "export interface Config { host: string }",
			"new_string": "export interface Config { host: number }",
		},
		"cwd": root,
	})
	if code != ExitBlocked {
		t.Fatalf("exit = %d, want blocked", code)
	}
}

func TestCriticalAssumptionWarnsButAllows(t *testing.T) {
	store, root := testutil.TempStore(t)
	target := filepath.Join(root, "src", "handler.ts")

	n := testutil.SampleNote(target)
	n.Assumptions = []note.Assumption{{
		ID:       "a1",
		Text:     "Dispatch is single-threaded",
		Severity: note.SeverityCritical,
	}}
	if err := store.Create(target, n); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := runHook(t, map[string]any{
		"tool_name":  "Write",
		"tool_input": map[string]any{"file_path": target, "content": "async function run() { await step(); }"},
		"cwd":        root,
	})
	if code != ExitAllowed {
		t.Fatalf("exit = %d, want allow", code)
	}
	if resp := decodeResponse(t, stdout); resp.Decision != "allow" {
		t.Fatalf("decision = %q", resp.Decision)
	}
	if !strings.Contains(stderr, "ASSUMPTION VIOLATION DETECTED") || !strings.Contains(stderr, "a1") {
		t.Fatalf("warning missing from stderr: %q", stderr)
	}
}

func TestExtractFilePathKeys(t *testing.T) {
	if _, ok := extractFilePath(map[string]any{"command": "ls"}); ok {
		t.Fatal("extracted a path from unrelated input")
	}
	if p, ok := extractFilePath(map[string]any{"file_path": "a.ts"}); !ok || p != "a.ts" {
		t.Fatalf("file_path key: %q %t", p, ok)
	}
	if p, ok := extractFilePath(map[string]any{"path": "b.ts"}); !ok || p != "b.ts" {
		t.Fatalf("path key: %q %t", p, ok)
	}
}
