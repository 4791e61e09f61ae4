package page

import (
	"log/slog"
	"net/http"

	"github.com/vango-dev/htms/internal/config"
	"github.com/vango-dev/htms/pkg/telemetry"
)

// DefaultQueueSize is the capacity of the dispatch queue.
const DefaultQueueSize = 256

// Option configures a Page.
type Option func(*Page)

// WithConfig sets the configuration. Defaults to config.New().
func WithConfig(cfg *config.Config) Option {
	return func(p *Page) {
		if cfg != nil {
			p.cfg = cfg
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Page) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTelemetry enables metrics and tracing.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(p *Page) {
		p.tel = t
	}
}

// WithHTTPClient sets the HTTP client used for page loads and fragments.
func WithHTTPClient(hc *http.Client) Option {
	return func(p *Page) {
		p.httpClient = hc
	}
}

// WithQueueSize sets the dispatch queue capacity.
func WithQueueSize(n int) Option {
	return func(p *Page) {
		if n > 0 {
			p.queueSize = n
		}
	}
}
