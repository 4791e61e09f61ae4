package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"

	"github.com/vango-dev/htms/internal/config"
	herrors "github.com/vango-dev/htms/internal/errors"
	"github.com/vango-dev/htms/pkg/binder"
	"github.com/vango-dev/htms/pkg/dom"
	"github.com/vango-dev/htms/pkg/formdata"
	"github.com/vango-dev/htms/pkg/history"
	"github.com/vango-dev/htms/pkg/merge"
	"github.com/vango-dev/htms/pkg/telemetry"
	"github.com/vango-dev/htms/pkg/transport"
)

// Blank is the location of a page that has not loaded anything.
const Blank = "about:blank"

var (
	// ErrClosed is returned when the page's control loop has stopped.
	ErrClosed = errors.New("page closed")

	// ErrNoSuchForm is returned for a form index outside the bound forms.
	ErrNoSuchForm = errors.New("no such form")

	// ErrNotLoaded is returned by Change before a document is open.
	ErrNotLoaded = errors.New("no document loaded")

	// ErrRunning is returned by a second call to Run.
	ErrRunning = errors.New("page loop already running")
)

// Page is a headless browsing context with bound forms.
type Page struct {
	cfg        *config.Config
	logger     *slog.Logger
	tel        *telemetry.Telemetry
	httpClient *http.Client
	queueSize  int

	client  *transport.Client
	merger  *merge.Merger
	history *history.History

	mu     sync.RWMutex
	doc    *dom.Document
	forms  []*binder.Form
	binder *binder.Binder

	// loopCtx is written by Run before the loop starts and read only by
	// functions running on the loop.
	loopCtx context.Context

	dispatchCh chan func()
	done       chan struct{}
	closeOnce  sync.Once
	running    atomic.Bool
}

// New creates a page showing Blank. Call Run to start its control loop.
func New(opts ...Option) (*Page, error) {
	p := &Page{
		cfg:       config.New(),
		logger:    slog.Default(),
		queueSize: DefaultQueueSize,
		loopCtx:   context.Background(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	p.dispatchCh = make(chan func(), p.queueSize)

	p.history = history.New(Blank)
	p.history.Observe(p.observe)

	topts, err := transport.FromConfig(p.cfg)
	if err != nil {
		return nil, err
	}
	if p.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(p.httpClient))
	}
	topts = append(topts,
		transport.WithBase(p.Location),
		transport.WithHistory(p.history),
		transport.WithLogger(p.logger),
		transport.WithTelemetry(p.tel),
	)
	p.client = transport.New(topts...)

	mopts := []merge.Option{merge.WithLogger(p.logger), merge.WithTelemetry(p.tel)}
	if p.cfg.Merge.Sanitize {
		mopts = append(mopts, merge.WithSanitizer(merge.Policy(p.cfg.Attributes)))
	}
	p.merger = merge.New(mopts...)

	return p, nil
}

func (p *Page) observe(c history.Change) {
	p.tel.M().HistoryWrite(c)
	p.logger.Debug("history written", "mode", c.Mode.String(), "source", string(c.Source), "url", c.URL)
}

// Load fetches a full page, makes it the live document and binds its
// forms. The final URL after redirects becomes the location.
func (p *Page) Load(ctx context.Context, rawURL string) error {
	res := p.client.Load(ctx, rawURL)
	switch res.Outcome {
	case transport.OutcomeNetworkFailure:
		return herrors.New("E122").WithDetail(rawURL).Wrap(res.Err)
	case transport.OutcomeHTTPRejected:
		return herrors.New("E122").WithDetail(fmt.Sprintf("%s returned %d %s", res.URL, res.Status, http.StatusText(res.Status)))
	}

	doc, err := dom.Parse(strings.NewReader(res.Body))
	if err != nil {
		return err
	}
	return p.Open(doc, res.URL)
}

// Open makes doc the live document at location and binds its forms.
// Responses still in flight for a previous document merge into that
// document, not into doc.
func (p *Page) Open(doc *dom.Document, location string) error {
	forms, err := binder.Discover(doc, p.cfg.Attributes)
	if err != nil {
		return err
	}
	b := binder.New(binder.Config{
		Document:  doc,
		Fetcher:   p.client,
		Merger:    p.merger,
		History:   p.history,
		Base:      p.Location,
		Dispatch:  p.Dispatch,
		Logger:    p.logger,
		Telemetry: p.tel,
	})

	p.mu.Lock()
	p.doc, p.forms, p.binder = doc, forms, b
	p.mu.Unlock()

	if p.history.Current() == Blank {
		p.history.Replace(history.SourceLoad, location)
	} else {
		p.history.Push(history.SourceLoad, location)
	}

	p.logger.Info("page opened", "url", location, "forms", len(forms))
	return nil
}

// Run processes dispatched work until ctx is done or Close is called.
// It closes the page on return.
func (p *Page) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer p.Close()
	p.loopCtx = ctx

	for {
		select {
		case fn := <-p.dispatchCh:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		}
	}
}

// Dispatch queues fn to run on the control loop. It blocks while the
// queue is full and reports false once the page is closed.
func (p *Page) Dispatch(fn func()) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.dispatchCh <- fn:
		return true
	case <-p.done:
		return false
	}
}

// Close stops the control loop. Work still queued is discarded.
func (p *Page) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

// Done returns a channel closed when the page is closed.
func (p *Page) Done() <-chan struct{} {
	return p.done
}

// Change applies edits to form index as a user would, then fires the
// form's change event on the control loop. It returns once the request has
// been handed to the transport, not when it settles; use Wait for that.
func (p *Page) Change(ctx context.Context, index int, edits ...formdata.Edit) error {
	p.mu.RLock()
	doc, forms, b := p.doc, p.forms, p.binder
	p.mu.RUnlock()

	if doc == nil {
		return ErrNotLoaded
	}
	if index < 0 || index >= len(forms) {
		return fmt.Errorf("%w: %d (page has %d)", ErrNoSuchForm, index, len(forms))
	}
	f := forms[index]

	errCh := make(chan error, 1)
	ok := p.Dispatch(func() {
		var err error
		doc.Mutate(func(*html.Node) {
			err = formdata.Apply(f.Node, edits...)
		})
		if err != nil {
			errCh <- err
			return
		}
		b.Change(p.loopCtx, f)
		errCh <- nil
	})
	if !ok {
		return ErrClosed
	}

	select {
	case err := <-errCh:
		return err
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every dispatched change has run and every request it
// started has settled and merged.
func (p *Page) Wait(ctx context.Context) error {
	barrier := make(chan struct{})
	if !p.Dispatch(func() { close(barrier) }) {
		return ErrClosed
	}
	select {
	case <-barrier:
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.RLock()
	b := p.binder
	p.mu.RUnlock()
	if b == nil {
		return nil
	}

	select {
	case <-b.Idle():
		return nil
	case <-p.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HTML renders the live document.
func (p *Page) HTML() string {
	p.mu.RLock()
	doc := p.doc
	p.mu.RUnlock()
	if doc == nil {
		return ""
	}
	return doc.String()
}

// Document returns the live document, or nil before Load or Open.
func (p *Page) Document() *dom.Document {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc
}

// Location returns the current history entry.
func (p *Page) Location() string {
	return p.history.Current()
}

// Forms returns the bound forms in document order.
func (p *Page) Forms() []*binder.Form {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]*binder.Form(nil), p.forms...)
}

// History returns the page's session history.
func (p *Page) History() *history.History {
	return p.history
}
