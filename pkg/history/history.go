// Package history models a browser session history: a list of URLs with a
// cursor, updated by push and replace operations that never navigate.
package history

import "sync"

// Mode determines how a URL update is recorded.
type Mode int

const (
	// ModePush adds a new history entry after the current one.
	ModePush Mode = iota

	// ModeReplace rewrites the current entry in place.
	ModeReplace
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	switch m {
	case ModePush:
		return "push"
	case ModeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Source identifies which component wrote a history entry.
type Source string

const (
	SourceLoad      Source = "load"
	SourceBinder    Source = "binder"
	SourceTransport Source = "transport"
)

// Change describes one history write.
type Change struct {
	Mode   Mode
	Source Source
	URL    string
}

// Writer is the subset of History the binder and transport write through.
type Writer interface {
	Push(source Source, url string)
	Replace(source Source, url string)
}

// History is a thread-safe session history.
type History struct {
	mu       sync.Mutex
	entries  []string
	index    int
	observer func(Change)
}

// New creates a history whose single entry is initial.
func New(initial string) *History {
	return &History{entries: []string{initial}}
}

// Observe registers fn to be called after every push or replace. It
// replaces any previous observer.
func (h *History) Observe(fn func(Change)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observer = fn
}

// Push drops entries after the cursor and appends url.
func (h *History) Push(source Source, url string) {
	h.write(Change{Mode: ModePush, Source: source, URL: url})
}

// Replace rewrites the current entry.
func (h *History) Replace(source Source, url string) {
	h.write(Change{Mode: ModeReplace, Source: source, URL: url})
}

func (h *History) write(c Change) {
	h.mu.Lock()
	switch c.Mode {
	case ModeReplace:
		h.entries[h.index] = c.URL
	default:
		h.entries = append(h.entries[:h.index+1], c.URL)
		h.index = len(h.entries) - 1
	}
	observer := h.observer
	h.mu.Unlock()

	if observer != nil {
		observer(c)
	}
}

// Current returns the URL of the current entry, the URL bar.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Back moves the cursor one entry back. It reports false at the start.
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Forward moves the cursor one entry forward. It reports false at the end.
func (h *History) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.index == len(h.entries)-1 {
		return false
	}
	h.index++
	return true
}
