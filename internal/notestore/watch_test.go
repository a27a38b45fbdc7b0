package notestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/starford/vordr/internal/notestore"
	"github.com/starford/vordr/internal/testutil"
)

func TestWatchPicksUpExternalUpdate(t *testing.T) {
	store, root := testutil.TempStore(t)
	if err := store.Create("src/a.ts", testutil.SampleNote("src/a.ts")); err != nil {
		t.Fatal(err)
	}
	wantHash := store.Resolver().Hash("src/a.ts")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type event struct{ kind, hash string }
	events := make(chan event, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Watch(ctx, func(kind, hash string) {
			events <- event{kind, hash}
		})
	}()

	// Give the watcher time to register before mutating.
	time.Sleep(200 * time.Millisecond)

	// A second store stands in for another process rewriting the note.
	other, err := notestore.Open(root, testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	n := other.Load("src/a.ts")
	if n == nil {
		t.Fatal("note not loadable from second store")
	}
	n.DesignIntent.Purpose = "Rewritten elsewhere"
	if err := other.Update("src/a.ts", n); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.kind != "updated" || ev.hash != wantHash {
			t.Fatalf("event %+v, want updated/%s", ev, wantHash)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event for external note update")
	}

	// The debounced rebuild refreshed the index from disk.
	entries := store.List()
	if len(entries) != 1 || entries[0].DesignIntentSummary != "Rewritten elsewhere" {
		t.Fatalf("index not refreshed: %+v", entries)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}
