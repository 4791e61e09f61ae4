package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/htms/pkg/history"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	tel := New(WithRegistry(reg), WithNamespace("test"), WithConstLabels(prometheus.Labels{"app": "shop"}))
	m := tel.Metrics

	m.RequestStarted()
	m.RequestStarted()
	m.RequestSettled("GET", "ok", 20*time.Millisecond)

	if got := testutil.ToFloat64(m.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "ok")); got != 1 {
		t.Errorf("requests_total{GET,ok} = %v, want 1", got)
	}

	m.ChangeDispatched()
	m.MergeStep("replace", "applied")
	m.MergeStep("replace", "skipped")
	m.MergeStep("replace", "skipped")
	m.HistoryWrite(history.Change{Mode: history.ModeReplace, Source: history.SourceBinder, URL: "/x"})

	if got := testutil.ToFloat64(m.changesTotal); got != 1 {
		t.Errorf("changes_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.mergesTotal.WithLabelValues("replace", "skipped")); got != 2 {
		t.Errorf("merges_total{replace,skipped} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.historyWrites.WithLabelValues("binder", "replace")); got != 1 {
		t.Errorf("history_writes_total{binder,replace} = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(reg, "test_requests_total", "test_merges_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if n != 3 {
		t.Errorf("series = %d, want 3", n)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RequestStarted()
	m.RequestSettled("GET", "ok", time.Second)
	m.ChangeDispatched()
	m.MergeStep("update", "applied")
	m.HistoryWrite(history.Change{})

	var tel *Telemetry
	if tel.M() != nil {
		t.Error("nil Telemetry should have nil metrics")
	}
	ctx, span := tel.Start(context.Background(), "x", trace.SpanKindClient)
	if ctx == nil || span == nil {
		t.Fatal("Start on nil Telemetry should return a usable span")
	}
	End(span, nil)
}

func TestNop(t *testing.T) {
	tel := Nop()
	if tel.M() != nil {
		t.Error("Nop should carry no metrics")
	}
	_, span := tel.Start(context.Background(), "htms.request", trace.SpanKindClient)
	End(span, errors.New("boom"))
	if span.IsRecording() {
		t.Error("noop span should not record")
	}
}
