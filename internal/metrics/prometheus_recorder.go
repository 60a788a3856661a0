package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "overfastsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg                *prom.Registry
	fetchDuration      *prom.HistogramVec
	fetchResults       *prom.CounterVec
	generationDuration prom.Histogram
	generationOutcome  *prom.CounterVec
	pageBytes          prom.Gauge
	lastSuccess        prom.Gauge
}

// NewPrometheusRecorder constructs and registers the metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream API requests by endpoint",
			Buckets:   prom.DefBuckets,
		}, []string{"endpoint", "result"}),
		fetchResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_results_total",
			Help:      "Upstream API request results by endpoint",
		}, []string{"endpoint", "result"}),
		generationDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Total duration of a generation run",
			Buckets:   prom.DefBuckets,
		}),
		generationOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generation_outcomes_total",
			Help:      "Generation runs by outcome",
		}, []string{"outcome"}),
		pageBytes: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "page_bytes",
			Help:      "Size of the last written index.html",
		}),
		lastSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that wrote a page",
		}),
	}
	reg.MustRegister(pr.fetchDuration, pr.fetchResults, pr.generationDuration, pr.generationOutcome, pr.pageBytes, pr.lastSuccess)
	return pr
}

// Registry returns the registry the recorder's metrics live in.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.reg
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

func (p *PrometheusRecorder) ObserveFetchDuration(endpoint string, d time.Duration, success bool) {
	if p == nil {
		return
	}
	p.fetchDuration.WithLabelValues(endpoint, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFetchResult(endpoint string, success bool) {
	if p == nil {
		return
	}
	p.fetchResults.WithLabelValues(endpoint, resultLabel(success)).Inc()
}

func (p *PrometheusRecorder) ObserveGenerationDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.generationDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncGenerationOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.generationOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetPageBytes(n int) {
	if p == nil {
		return
	}
	p.pageBytes.Set(float64(n))
}

func (p *PrometheusRecorder) SetLastSuccess(t time.Time) {
	if p == nil {
		return
	}
	p.lastSuccess.Set(float64(t.Unix()))
}
