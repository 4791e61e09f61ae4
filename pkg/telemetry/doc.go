// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for htms pages.
//
// Metrics collected:
//   - htms_requests_total: fragment requests by method and outcome
//   - htms_request_duration_seconds: fragment request latency by method
//   - htms_requests_in_flight: requests not yet settled
//   - htms_changes_total: change events dispatched by bound forms
//   - htms_merges_total: merge steps by mode and result (applied, skipped)
//   - htms_history_writes_total: history writes by source and mode
//
// A nil *Metrics is valid and records nothing, so components can be built
// without telemetry.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	tel := telemetry.New(telemetry.WithRegistry(reg))
//	p := page.New(page.WithTelemetry(tel))
//
// Spans use the global OpenTelemetry tracer provider. Configure it in main()
// before building pages.
package telemetry
