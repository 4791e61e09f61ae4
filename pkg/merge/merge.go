package merge

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/vango-dev/htms/internal/errors"
	"github.com/vango-dev/htms/pkg/dom"
	"github.com/vango-dev/htms/pkg/telemetry"
)

// Mode is a merge strategy.
type Mode string

const (
	ModeReplace Mode = "replace"
	ModeUpdate  Mode = "update"
)

// Targets lists the ids to merge per mode.
type Targets struct {
	Replace []string
	Update  []string
}

// Empty reports whether no id is targeted.
func (t Targets) Empty() bool {
	return len(t.Replace) == 0 && len(t.Update) == 0
}

// Skip reasons.
const (
	ReasonMissingLive    = "missing_live"
	ReasonMissingFetched = "missing_fetched"
)

// Step is the result of merging one id.
type Step struct {
	ID      string
	Mode    Mode
	Applied bool
	Reason  string
}

// Report lists the steps of one Apply call in processing order.
type Report struct {
	Steps []Step
}

// Applied returns the ids that were merged.
func (r Report) Applied() []string {
	return r.filter(true)
}

// Skipped returns the ids that were skipped.
func (r Report) Skipped() []string {
	return r.filter(false)
}

func (r Report) filter(applied bool) []string {
	var out []string
	for _, s := range r.Steps {
		if s.Applied == applied {
			out = append(out, s.ID)
		}
	}
	return out
}

// Sanitizer cleans untrusted HTML. *bluemonday.Policy implements it.
type Sanitizer interface {
	Sanitize(s string) string
}

// Merger applies fetched documents to a live one.
type Merger struct {
	logger    *slog.Logger
	tel       *telemetry.Telemetry
	sanitizer Sanitizer
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Merger) {
		m.logger = l
	}
}

// WithTelemetry sets metrics and tracing.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(m *Merger) {
		m.tel = t
	}
}

// WithSanitizer runs fetched text through s before parsing.
func WithSanitizer(s Sanitizer) Option {
	return func(m *Merger) {
		m.sanitizer = s
	}
}

// New creates a Merger.
func New(opts ...Option) *Merger {
	m := &Merger{logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply parses text and merges the targeted elements into live. Replace
// targets are processed before update targets. The only error is a parse
// failure, in which case live is untouched.
func (m *Merger) Apply(ctx context.Context, live *dom.Document, text string, targets Targets) (Report, error) {
	_, span := m.tel.Start(ctx, "htms.merge", trace.SpanKindInternal,
		attribute.StringSlice("htms.replace", targets.Replace),
		attribute.StringSlice("htms.update", targets.Update),
	)

	report, err := m.apply(live, text, targets)

	span.SetAttributes(
		attribute.Int("htms.applied", len(report.Applied())),
		attribute.Int("htms.skipped", len(report.Skipped())),
	)
	telemetry.End(span, err)
	return report, err
}

func (m *Merger) apply(live *dom.Document, text string, targets Targets) (Report, error) {
	var report Report
	if targets.Empty() {
		return report, nil
	}

	if m.sanitizer != nil {
		text = m.sanitizer.Sanitize(text)
	}
	fetched, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return report, errors.New("E160").Wrap(err)
	}

	for _, id := range targets.Replace {
		report.Steps = append(report.Steps, m.step(live, fetched, id, ModeReplace))
	}
	for _, id := range targets.Update {
		report.Steps = append(report.Steps, m.step(live, fetched, id, ModeUpdate))
	}
	return report, nil
}

// step merges one id under the live document's write lock.
func (m *Merger) step(live *dom.Document, fetched *html.Node, id string, mode Mode) Step {
	s := Step{ID: id, Mode: mode}

	live.Mutate(func(root *html.Node) {
		current := dom.FindByID(root, id)
		if current == nil {
			s.Reason = ReasonMissingLive
			return
		}
		next := dom.FindByID(fetched, id)
		if next == nil {
			s.Reason = ReasonMissingFetched
			return
		}
		switch mode {
		case ModeReplace:
			s.Applied = dom.ReplaceWith(current, next)
		case ModeUpdate:
			dom.ReplaceChildren(current, next)
			s.Applied = true
		}
	})

	result := "applied"
	if !s.Applied {
		result = "skipped"
		m.logger.Debug("merge target skipped", "target", id, "mode", string(mode), "reason", s.Reason)
	}
	m.tel.M().MergeStep(string(mode), result)
	return s
}
