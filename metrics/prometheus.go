// Package metrics builds tally scopes that are scraped by prometheus.
package metrics

import (
	"io"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/uber-go/tally/v4"
	"github.com/uber-go/tally/v4/prometheus"
)

type Prometheus struct {
	Scope   tally.Scope
	Handler http.Handler
	closer  io.Closer
}

// NewPrometheus returns a root scope reporting into a private registry every
// interval, and the handler serving that registry.
func NewPrometheus(prefix string, interval time.Duration) *Prometheus {
	registry := prom.NewRegistry()
	reporter := prometheus.NewReporter(prometheus.Options{
		Registerer:               registry,
		Gatherer:                 registry,
		DefaultTimerType:         prometheus.HistogramTimerType,
		DefaultHistogramBuckets:  prometheus.DefaultHistogramBuckets(),
		DefaultSummaryObjectives: prometheus.DefaultSummaryObjectives(),
	})
	scope, closer := tally.NewRootScope(tally.ScopeOptions{
		Prefix:          prefix,
		CachedReporter:  reporter,
		Separator:       prometheus.DefaultSeparator,
		SanitizeOptions: &prometheus.DefaultSanitizerOpts,
	}, interval)
	return &Prometheus{Scope: scope, Handler: reporter.HTTPHandler(), closer: closer}
}

// Close flushes and stops reporting.
func (p *Prometheus) Close() error {
	return p.closer.Close()
}
