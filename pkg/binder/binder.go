package binder

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"golang.org/x/net/html"

	"github.com/vango-dev/htms/pkg/dom"
	"github.com/vango-dev/htms/pkg/history"
	"github.com/vango-dev/htms/pkg/merge"
	"github.com/vango-dev/htms/pkg/telemetry"
	"github.com/vango-dev/htms/pkg/transport"
)

// Fetcher performs one request. *transport.Client implements it.
type Fetcher interface {
	Do(ctx context.Context, r transport.Request) transport.Result
}

// Dispatcher queues fn onto the control goroutine. It reports false when
// the loop no longer accepts work.
type Dispatcher func(fn func()) bool

// Binder runs the change pipeline for bound forms.
type Binder struct {
	doc      *dom.Document
	fetcher  Fetcher
	merger   *merge.Merger
	history  history.Writer
	base     func() string
	dispatch Dispatcher
	logger   *slog.Logger
	tel      *telemetry.Telemetry

	track tracker
}

// Config holds the collaborators of a Binder.
type Config struct {
	Document *dom.Document
	Fetcher  Fetcher
	Merger   *merge.Merger
	History  history.Writer

	// Base returns the page location that relative push URLs resolve against.
	Base func() string

	// Dispatch queues merges back onto the control goroutine. When nil,
	// merges run on the worker goroutine that received the response.
	Dispatch Dispatcher

	Logger    *slog.Logger
	Telemetry *telemetry.Telemetry
}

// New creates a Binder.
func New(cfg Config) *Binder {
	b := &Binder{
		doc:      cfg.Document,
		fetcher:  cfg.Fetcher,
		merger:   cfg.Merger,
		history:  cfg.History,
		base:     cfg.Base,
		dispatch: cfg.Dispatch,
		logger:   cfg.Logger,
		tel:      cfg.Telemetry,
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.merger == nil {
		b.merger = merge.New(merge.WithLogger(b.logger), merge.WithTelemetry(b.tel))
	}
	if b.dispatch == nil {
		b.dispatch = func(fn func()) bool {
			fn()
			return true
		}
	}
	return b
}

// Change handles a change event on f. It must run on the control
// goroutine. It returns the request URL; the request itself settles later.
func (b *Binder) Change(ctx context.Context, f *Form) string {
	var query string
	b.doc.Read(func(*html.Node) { query = f.Query() })
	target := f.RequestURL(query)

	if f.PushURL && b.history != nil {
		b.history.Replace(history.SourceBinder, b.resolve(target))
	}

	b.tel.M().ChangeDispatched()
	b.logger.Debug("form changed", "form", f.Index, "method", f.Method, "url", target)

	b.track.add()
	go func() {
		res := b.fetcher.Do(ctx, transport.Request{Method: f.Method, URL: target})
		settle := func() {
			defer b.track.done()
			b.settle(ctx, f, target, res)
		}
		if !b.dispatch(settle) {
			b.logger.Debug("response dropped, page closed", "form", f.Index, "url", target)
			b.track.done()
		}
	}()

	return target
}

// settle applies a response on the control goroutine.
func (b *Binder) settle(ctx context.Context, f *Form, target string, res transport.Result) {
	switch res.Outcome {
	case transport.OutcomeOK:
		if _, err := b.merger.Apply(ctx, b.doc, res.Body, f.Targets); err != nil {
			b.logger.Error("merge failed", "form", f.Index, "url", target, "error", err)
		}
	case transport.OutcomeHTTPRejected:
		b.logger.Debug("response ignored", "form", f.Index, "url", target, "status", res.Status)
	case transport.OutcomeNetworkFailure:
		b.logger.Error("request failed", "form", f.Index, "url", target, "error", res.Err)
	}
}

// Idle returns a channel closed once no request is outstanding and every
// settled response has been merged.
func (b *Binder) Idle() <-chan struct{} {
	return b.track.idle()
}

// Pending returns the number of requests not yet settled and merged.
func (b *Binder) Pending() int {
	return b.track.count()
}

// resolve makes target absolute against the page location, as a browser
// does for history URLs.
func (b *Binder) resolve(target string) string {
	if b.base == nil {
		return target
	}
	base, err := url.Parse(b.base())
	if err != nil {
		return target
	}
	ref, err := url.Parse(target)
	if err != nil {
		return target
	}
	return base.ResolveReference(ref).String()
}

// tracker counts outstanding requests and wakes idle waiters.
type tracker struct {
	mu      sync.Mutex
	n       int
	waiters []chan struct{}
}

func (t *tracker) add() {
	t.mu.Lock()
	t.n++
	t.mu.Unlock()
}

func (t *tracker) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n--
	if t.n > 0 {
		return
	}
	for _, w := range t.waiters {
		close(w)
	}
	t.waiters = nil
}

func (t *tracker) idle() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan struct{})
	if t.n == 0 {
		close(ch)
		return ch
	}
	t.waiters = append(t.waiters, ch)
	return ch
}

func (t *tracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.n
}
