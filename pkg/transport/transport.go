package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/htms/internal/config"
	"github.com/vango-dev/htms/internal/errors"
	"github.com/vango-dev/htms/pkg/history"
	"github.com/vango-dev/htms/pkg/telemetry"
)

// maxRedirects matches the net/http default policy.
const maxRedirects = 10

// Outcome classifies a settled request.
type Outcome int

const (
	// OutcomeOK is a 2xx response; Result.Body holds the text.
	OutcomeOK Outcome = iota

	// OutcomeHTTPRejected is any non-2xx response.
	OutcomeHTTPRejected

	// OutcomeNetworkFailure means no response was received.
	OutcomeNetworkFailure
)

// String returns the string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeHTTPRejected:
		return "http_rejected"
	case OutcomeNetworkFailure:
		return "network_failure"
	default:
		return "unknown"
	}
}

// Request describes one fragment request.
type Request struct {
	// Method is "get" or "post" in any case.
	Method string

	// URL is absolute or relative to the page location.
	URL string

	// Body is sent as-is when non-nil.
	Body []byte
}

// Result is the normalized outcome of a request.
type Result struct {
	Outcome Outcome

	// Body is the response text for OutcomeOK and empty otherwise.
	Body string

	// Status is the final HTTP status code, 0 on network failure.
	Status int

	// URL is the final URL after redirects.
	URL string

	// Redirected reports whether at least one redirect was followed.
	Redirected bool

	// Err is set for OutcomeNetworkFailure.
	Err error
}

// OK reports whether the request produced a body to merge.
func (r Result) OK() bool {
	return r.Outcome == OutcomeOK
}

// Client issues fragment requests.
type Client struct {
	http        *http.Client
	base        func() string
	history     history.Writer
	header      string
	contentType string
	userAgent   string
	logger      *slog.Logger
	tel         *telemetry.Telemetry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Its CheckRedirect policy
// decides how redirects are followed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithBase sets the function returning the URL relative request URLs
// resolve against. The page passes its current location.
func WithBase(base func() string) Option {
	return func(c *Client) {
		c.base = base
	}
}

// WithHistory sets where redirect destinations are pushed.
func WithHistory(h history.Writer) Option {
	return func(c *Client) {
		c.history = h
	}
}

// WithRequestHeader sets the fragment marker header name.
func WithRequestHeader(name string) Option {
	return func(c *Client) {
		c.header = name
	}
}

// WithContentType sets the Content-Type sent on fragment requests.
func WithContentType(ct string) Option {
	return func(c *Client) {
		c.contentType = ct
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTelemetry sets metrics and tracing.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(c *Client) {
		c.tel = t
	}
}

// FromConfig returns the options described by cfg.Transport.
func FromConfig(cfg *config.Config) ([]Option, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	opts := []Option{
		WithRequestHeader(cfg.Transport.RequestHeader),
		WithContentType(cfg.Transport.ContentType),
		WithUserAgent(cfg.Transport.UserAgent),
	}
	if timeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return opts, nil
}

// New creates a Client. Without options it uses a fresh http.Client with no
// timeout and the default marker header.
func New(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{},
		header:      config.DefaultRequestHeader,
		contentType: config.DefaultContentType,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs a fragment request. Failures are reported through Result.
func (c *Client) Do(ctx context.Context, r Request) Result {
	return c.do(ctx, r, true)
}

// Load fetches a full page: a plain GET without the fragment headers.
// Redirects are followed but not pushed; the caller owns the location.
func (c *Client) Load(ctx context.Context, rawURL string) Result {
	return c.do(ctx, Request{Method: http.MethodGet, URL: rawURL}, false)
}

func (c *Client) do(ctx context.Context, r Request, fragment bool) Result {
	method := strings.ToUpper(r.Method)
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tel.Start(ctx, "htms.request", trace.SpanKindClient,
		attribute.String("http.request.method", method),
		attribute.String("url.full", r.URL),
		attribute.Bool("htms.fragment", fragment),
	)

	metrics := c.tel.M()
	metrics.RequestStarted()
	start := time.Now()

	res := c.send(ctx, method, r, fragment)

	metrics.RequestSettled(method, res.Outcome.String(), time.Since(start))
	span.SetAttributes(
		attribute.Int("http.response.status_code", res.Status),
		attribute.String("htms.outcome", res.Outcome.String()),
		attribute.Bool("htms.redirected", res.Redirected),
	)
	telemetry.End(span, res.Err)

	return res
}

func (c *Client) send(ctx context.Context, method string, r Request, fragment bool) Result {
	target, err := c.resolve(r.URL)
	if err != nil {
		return Result{Outcome: OutcomeNetworkFailure, URL: r.URL, Err: errors.New("E120").Wrap(err)}
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return Result{Outcome: OutcomeNetworkFailure, URL: target.String(), Err: errors.New("E120").Wrap(err)}
	}
	if fragment {
		req.Header.Set("Content-Type", c.contentType)
		req.Header.Set(c.header, "true")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	hc, redirected := c.tracking()
	resp, err := hc.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeNetworkFailure, URL: target.String(), Err: errors.New("E121").Wrap(err)}
	}
	defer resp.Body.Close()

	final := *resp.Request.URL
	final.Fragment = ""
	res := Result{
		Status:     resp.StatusCode,
		URL:        final.String(),
		Redirected: *redirected > 0,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		res.Outcome = OutcomeHTTPRejected
		c.logger.Debug("request rejected", "method", method, "url", res.URL, "status", resp.StatusCode)
		return res
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Outcome = OutcomeNetworkFailure
		res.Err = errors.New("E121").Wrap(err)
		return res
	}

	if fragment && res.Redirected && c.history != nil {
		c.history.Push(history.SourceTransport, res.URL)
	}

	res.Outcome = OutcomeOK
	res.Body = string(text)
	c.logger.Debug("request settled", "method", method, "url", res.URL, "status", resp.StatusCode, "bytes", len(text))
	return res
}

// tracking returns a shallow copy of the HTTP client whose redirect policy
// also counts accepted redirects.
func (c *Client) tracking() (*http.Client, *int) {
	hc := *c.http
	count := new(int)
	policy := c.http.CheckRedirect
	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		var err error
		if policy != nil {
			err = policy(req, via)
		} else if len(via) >= maxRedirects {
			err = fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if err == nil {
			*count++
		}
		return err
	}
	return &hc, count
}

// resolve parses raw and resolves it against the base location.
func (c *Client) resolve(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.IsAbs() || c.base == nil {
		return u, nil
	}
	base, err := url.Parse(c.base())
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(u), nil
}
