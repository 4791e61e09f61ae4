package htmstest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/htms/pkg/dom"
	"github.com/vango-dev/htms/pkg/formdata"
	"github.com/vango-dev/htms/pkg/page"
)

// Timeout bounds every blocking helper.
var Timeout = 5 * time.Second

// StartPage creates a page and runs its loop until the test ends.
func StartPage(t testing.TB, opts ...page.Option) *page.Page {
	t.Helper()
	p, err := page.New(opts...)
	if err != nil {
		t.Fatalf("page.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return p
}

// Load loads url into p.
func Load(t testing.TB, p *page.Page, url string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	if err := p.Load(ctx, url); err != nil {
		t.Fatalf("Load(%s): %v", url, err)
	}
}

// Open binds the given markup at location.
func Open(t testing.TB, p *page.Page, markup, location string) {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := p.Open(doc, location); err != nil {
		t.Fatalf("Open: %v", err)
	}
}

// Change edits form index with "name=value" assignments, fires its change
// event and waits for the page to settle.
func Change(t testing.TB, p *page.Page, index int, assignments ...string) {
	t.Helper()
	Fire(t, p, index, assignments...)
	Wait(t, p)
}

// Fire is Change without waiting.
func Fire(t testing.TB, p *page.Page, index int, assignments ...string) {
	t.Helper()
	edits := make([]formdata.Edit, 0, len(assignments))
	for _, a := range assignments {
		e, err := formdata.ParseEdit(a)
		if err != nil {
			t.Fatalf("ParseEdit(%q): %v", a, err)
		}
		edits = append(edits, e)
	}
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	if err := p.Change(ctx, index, edits...); err != nil {
		t.Fatalf("Change(%d): %v", index, err)
	}
}

// Wait blocks until p has settled.
func Wait(t testing.TB, p *page.Page) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}

// ExpectContains fails if the rendered page does not contain expected.
func ExpectContains(t testing.TB, p *page.Page, expected string) {
	t.Helper()
	html := p.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected page to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains fails if the rendered page contains unexpected.
func ExpectNotContains(t testing.TB, p *page.Page, unexpected string) {
	t.Helper()
	html := p.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected page to not contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectOuterHTML fails unless the element with id renders as want.
func ExpectOuterHTML(t testing.TB, p *page.Page, id, want string) {
	t.Helper()
	doc := p.Document()
	if doc == nil {
		t.Fatalf("no document loaded")
	}
	if got := doc.OuterHTML(id); got != want {
		t.Errorf("#%s = %s, want %s", id, got, want)
	}
}

// ExpectLocation fails unless the URL bar shows want.
func ExpectLocation(t testing.TB, p *page.Page, want string) {
	t.Helper()
	if got := p.Location(); got != want {
		t.Errorf("location = %s, want %s", got, want)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
