package history

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPushReplace(t *testing.T) {
	h := New("http://example.test/")

	h.Push(SourceTransport, "http://example.test/a")
	h.Replace(SourceBinder, "http://example.test/a?q=1")

	if got := h.Current(); got != "http://example.test/a?q=1" {
		t.Errorf("Current() = %q", got)
	}
	want := []string{"http://example.test/", "http://example.test/a?q=1"}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestBackForward(t *testing.T) {
	h := New("/0")
	h.Push(SourceTransport, "/1")
	h.Push(SourceTransport, "/2")

	if !h.Back() || h.Current() != "/1" {
		t.Fatalf("Back() -> %q, want /1", h.Current())
	}
	if !h.Back() || h.Current() != "/0" {
		t.Fatalf("Back() -> %q, want /0", h.Current())
	}
	if h.Back() {
		t.Error("Back() at start should report false")
	}
	if !h.Forward() || h.Current() != "/1" {
		t.Fatalf("Forward() -> %q, want /1", h.Current())
	}

	// Pushing from the middle drops forward entries.
	h.Push(SourceTransport, "/x")
	if diff := cmp.Diff([]string{"/0", "/1", "/x"}, h.Entries()); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
	if h.Forward() {
		t.Error("Forward() at end should report false")
	}
}

func TestObserve(t *testing.T) {
	h := New("/")
	var got []Change
	h.Observe(func(c Change) { got = append(got, c) })

	h.Replace(SourceBinder, "/search?q=foo")
	h.Push(SourceTransport, "/results")

	want := []Change{
		{Mode: ModeReplace, Source: SourceBinder, URL: "/search?q=foo"},
		{Mode: ModePush, Source: SourceTransport, URL: "/results"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestModeString(t *testing.T) {
	if ModePush.String() != "push" || ModeReplace.String() != "replace" || Mode(9).String() != "unknown" {
		t.Error("unexpected Mode strings")
	}
}

func TestConcurrentWrites(t *testing.T) {
	h := New("/")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Push(SourceTransport, "/p")
			h.Replace(SourceBinder, "/r")
			_ = h.Current()
		}()
	}
	wg.Wait()
	if h.Len() != 21 {
		t.Errorf("Len() = %d, want 21", h.Len())
	}
}
