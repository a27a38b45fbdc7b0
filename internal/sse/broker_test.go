package sse

import (
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg := <-ch:
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestSubscribeAndPublish(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("client count = %d, want 1", n)
	}

	b.Publish(Event{Type: "test.event", Data: map[string]string{"k": "v"}})

	msg := receive(t, ch)
	if !strings.Contains(msg, "event: test.event") {
		t.Fatalf("message missing event line: %q", msg)
	}
	if !strings.Contains(msg, `"k":"v"`) {
		t.Fatalf("message missing payload: %q", msg)
	}
}

func TestNoteEvents(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	for _, kind := range []string{"created", "updated", "deleted"} {
		b.PublishNoteEvent(kind, "abc123")
		msg := receive(t, ch)
		if !strings.Contains(msg, "event: note."+kind) {
			t.Fatalf("kind %s: got %q", kind, msg)
		}
		if !strings.Contains(msg, `"hash":"abc123"`) {
			t.Fatalf("kind %s: payload missing hash: %q", kind, msg)
		}
	}
}

func TestPublishBlocked(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.PublishBlocked("src/config.ts", "f1")

	msg := receive(t, ch)
	if !strings.Contains(msg, "event: check.blocked") {
		t.Fatalf("got %q", msg)
	}
	if !strings.Contains(msg, `"frozenId":"f1"`) {
		t.Fatalf("payload missing frozen id: %q", msg)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	b.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("received a message on an unsubscribed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after unsubscribe")
	}
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("client count = %d after unsubscribe", n)
	}
}

func TestCloseIsSafeToRepeat(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Fatal("client channel still open after close")
	}
	// Operations after close are no-ops.
	b.Publish(Event{Type: "x"})
	if got := b.Subscribe(); got == nil {
		t.Fatal("subscribe after close returned nil")
	}
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("client count = %d after close", n)
	}
}
