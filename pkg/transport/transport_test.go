package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/htms/internal/config"
	herrors "github.com/vango-dev/htms/internal/errors"
	"github.com/vango-dev/htms/pkg/history"
	"github.com/vango-dev/htms/pkg/telemetry"
)

type seen struct {
	method      string
	contentType string
	marker      string
	query       string
	body        string
}

func newServer(t *testing.T, got *seen) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*got = seen{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			marker:      r.Header.Get("X-Request"),
			query:       r.URL.RawQuery,
			body:        string(b),
		}
		w.Write([]byte(`<div id="results">ok</div>`))
	})
	r.Get("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new?from=old", http.StatusFound)
	})
	r.Get("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved"))
	})
	r.Get("/to-missing", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/missing", http.StatusSeeOther)
	})
	r.Get("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestDo_OK(t *testing.T) {
	var got seen
	srv := newServer(t, &got)
	c := New()

	res := c.Do(context.Background(), Request{Method: "get", URL: srv.URL + "/echo?q=foo"})

	if !res.OK() {
		t.Fatalf("Outcome = %v, err = %v", res.Outcome, res.Err)
	}
	if res.Body != `<div id="results">ok</div>` {
		t.Errorf("Body = %q", res.Body)
	}
	if res.Status != http.StatusOK || res.Redirected {
		t.Errorf("Status = %d, Redirected = %v", res.Status, res.Redirected)
	}
	if got.method != http.MethodGet || got.query != "q=foo" {
		t.Errorf("server saw %s ?%s", got.method, got.query)
	}
	if got.contentType != "application/json" || got.marker != "true" {
		t.Errorf("headers Content-Type=%q X-Request=%q", got.contentType, got.marker)
	}
}

func TestDo_PostWithBody(t *testing.T) {
	var got seen
	srv := newServer(t, &got)
	c := New(WithRequestHeader("X-Fragment"), WithContentType("text/plain"))

	res := c.Do(context.Background(), Request{Method: "post", URL: srv.URL + "/echo", Body: []byte("payload")})
	if !res.OK() {
		t.Fatalf("Outcome = %v", res.Outcome)
	}
	if got.method != http.MethodPost || got.body != "payload" {
		t.Errorf("server saw %s body %q", got.method, got.body)
	}
	if got.contentType != "text/plain" || got.marker != "" {
		t.Errorf("headers Content-Type=%q X-Request=%q", got.contentType, got.marker)
	}
}

func TestDo_RedirectPushesHistory(t *testing.T) {
	var got seen
	srv := newServer(t, &got)
	h := history.New(srv.URL + "/")
	c := New(WithHistory(h), WithBase(h.Current))

	res := c.Do(context.Background(), Request{Method: "get", URL: "/old"})

	if !res.OK() || !res.Redirected {
		t.Fatalf("Outcome = %v Redirected = %v", res.Outcome, res.Redirected)
	}
	want := srv.URL + "/new?from=old"
	if res.URL != want {
		t.Errorf("URL = %q, want %q", res.URL, want)
	}
	if h.Current() != want || h.Len() != 2 {
		t.Errorf("history = %v, want push of %q", h.Entries(), want)
	}
}

func TestDo_NoRedirectLeavesHistory(t *testing.T) {
	var got seen
	srv := newServer(t, &got)
	h := history.New(srv.URL + "/")
	c := New(WithHistory(h), WithBase(h.Current))

	if res := c.Do(context.Background(), Request{Method: "get", URL: "echo"}); !res.OK() {
		t.Fatalf("Outcome = %v", res.Outcome)
	}
	if h.Len() != 1 {
		t.Errorf("history = %v, want untouched", h.Entries())
	}
}

func TestDo_Rejected(t *testing.T) {
	var got seen
	srv := newServer(t, &got)
	h := history.New(srv.URL + "/")
	c := New(WithHistory(h))

	for _, path := range []string{"/fail", "/nowhere", "/to-missing"} {
		t.Run(path, func(t *testing.T) {
			res := c.Do(context.Background(), Request{Method: "get", URL: srv.URL + path})
			if res.Outcome != OutcomeHTTPRejected {
				t.Fatalf("Outcome = %v, want HTTPRejected", res.Outcome)
			}
			if res.Body != "" || res.Err != nil {
				t.Errorf("rejected result should carry no body or error: %+v", res)
			}
		})
	}
	if h.Len() != 1 {
		t.Errorf("rejected redirect must not touch history: %v", h.Entries())
	}
}

func TestDo_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	res := New().Do(context.Background(), Request{Method: "get", URL: addr + "/x"})
	if res.Outcome != OutcomeNetworkFailure {
		t.Fatalf("Outcome = %v, want NetworkFailure", res.Outcome)
	}
	if herrors.Code(res.Err) != "E121" {
		t.Errorf("Err = %v, want E121", res.Err)
	}
}

func TestDo_TooManyRedirects(t *testing.T) {
	var got seen
	srv := newServer(t, &got)

	res := New().Do(context.Background(), Request{Method: "get", URL: srv.URL + "/loop"})
	if res.Outcome != OutcomeNetworkFailure {
		t.Fatalf("Outcome = %v, want NetworkFailure", res.Outcome)
	}
}

func TestDo_InvalidURL(t *testing.T) {
	res := New().Do(context.Background(), Request{Method: "get", URL: "http://[::1"})
	if res.Outcome != OutcomeNetworkFailure || herrors.Code(res.Err) != "E120" {
		t.Errorf("Outcome = %v Err = %v, want NetworkFailure E120", res.Outcome, res.Err)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := New().Do(ctx, Request{Method: "get", URL: srv.URL})
	if res.Outcome != OutcomeNetworkFailure || !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("Outcome = %v Err = %v", res.Outcome, res.Err)
	}
}

func TestLoad_SendsNoMarker(t *testing.T) {
	var got seen
	srv := newServer(t, &got)
	h := history.New(srv.URL + "/")
	c := New(WithHistory(h))

	res := c.Load(context.Background(), srv.URL+"/echo")
	if !res.OK() {
		t.Fatalf("Outcome = %v", res.Outcome)
	}
	if got.marker != "" || got.contentType != "" {
		t.Errorf("page load sent fragment headers: %+v", got)
	}

	res = c.Load(context.Background(), srv.URL+"/old")
	if !res.Redirected || h.Len() != 1 {
		t.Errorf("Load must not push history: redirected=%v entries=%v", res.Redirected, h.Entries())
	}
}

func TestDo_Metrics(t *testing.T) {
	var got seen
	srv := newServer(t, &got)
	reg := prometheus.NewRegistry()
	c := New(WithTelemetry(telemetry.New(telemetry.WithRegistry(reg))))

	c.Do(context.Background(), Request{Method: "get", URL: srv.URL + "/echo"})
	c.Do(context.Background(), Request{Method: "get", URL: srv.URL + "/fail"})

	want := `
# HELP htms_requests_total Total number of fragment requests by outcome
# TYPE htms_requests_total counter
htms_requests_total{method="GET",outcome="http_rejected"} 1
htms_requests_total{method="GET",outcome="ok"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "htms_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.New()
	cfg.Transport.Timeout = "2s"
	cfg.Transport.UserAgent = "htms-test"

	opts, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	c := New(opts...)
	if c.http.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", c.http.Timeout)
	}
	if c.userAgent != "htms-test" || c.header != "X-Request" {
		t.Errorf("client = %+v", c)
	}

	cfg.Transport.Timeout = "nope"
	if _, err := FromConfig(cfg); err == nil {
		t.Error("expected error for bad timeout")
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{
		OutcomeOK:             "ok",
		OutcomeHTTPRejected:   "http_rejected",
		OutcomeNetworkFailure: "network_failure",
		Outcome(42):           "unknown",
	} {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", o, got, want)
		}
	}
}
