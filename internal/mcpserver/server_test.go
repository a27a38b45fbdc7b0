package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/vordr/internal/note"
	"github.com/starford/vordr/internal/testutil"
)

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestViewNote(t *testing.T) {
	store, _ := testutil.TempStore(t)
	if err := store.Create("src/a.ts", testutil.SampleNote("src/a.ts")); err != nil {
		t.Fatal(err)
	}
	s := New(store)

	res, err := s.viewNote(context.Background(), callReq(map[string]any{"path": "src/a.ts"}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(textOf(t, res), "DESIGN INTENT NOTE DETECTED") {
		t.Fatal("note rendering missing from result")
	}

	res, err = s.viewNote(context.Background(), callReq(map[string]any{"path": "src/absent.ts"}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("missing note did not produce a tool error")
	}
}

func TestListNotes(t *testing.T) {
	store, _ := testutil.TempStore(t)
	s := New(store)

	res, err := s.listNotes(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if textOf(t, res) != "no notes found" {
		t.Fatalf("empty listing = %q", textOf(t, res))
	}

	if err := store.Create("src/a.ts", testutil.SampleNote("src/a.ts")); err != nil {
		t.Fatal(err)
	}
	res, err = s.listNotes(context.Background(), callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(textOf(t, res), "Event handler registry") {
		t.Fatalf("listing = %q", textOf(t, res))
	}
}

func TestCheckChange(t *testing.T) {
	store, _ := testutil.TempStore(t)
	n := testutil.SampleNote("src/config.ts")
	n.FrozenSections = []note.FrozenSection{{
		ID:      "f1",
		Reason:  "Public contract",
		Pattern: `export interface Config[^}]*\}`,
	}}
	if err := store.Create("src/config.ts", n); err != nil {
		t.Fatal(err)
	}
	s := New(store)

	res, err := s.checkChange(context.Background(), callReq(map[string]any{
		"path":        "src/config.ts",
		"old_content": "export interface Config {\n  host: string;\n}",
		"new_content": "export interface Config {\n  host: number;\n}",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(textOf(t, res), `"frozenId": "f1"`) {
		t.Fatalf("report = %q", textOf(t, res))
	}
}

func TestVerifyAcknowledgment(t *testing.T) {
	store, _ := testutil.TempStore(t)
	if err := store.Create("src/handler.ts", testutil.GuardedNote("src/handler.ts")); err != nil {
		t.Fatal(err)
	}
	s := New(store)

	res, err := s.verifyAcknowledgment(context.Background(), callReq(map[string]any{
		"path":    "src/handler.ts",
		"message": "I acknowledge the design intent constraints for handler.ts",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(textOf(t, res), "acknowledged: true") {
		t.Fatalf("result = %q", textOf(t, res))
	}

	res, err = s.verifyAcknowledgment(context.Background(), callReq(map[string]any{
		"path":    "src/handler.ts",
		"message": "ship it",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(textOf(t, res), "acknowledged: false") {
		t.Fatalf("result = %q", textOf(t, res))
	}
}
