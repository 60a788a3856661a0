// Package metrics records generation metrics behind a Recorder interface.
//
// Components default to NoopRecorder, so the generator runs without any metrics
// setup. When a textfile path is configured, or the serve command is running, a
// PrometheusRecorder is injected instead:
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	client := overfast.NewClient(baseURL, overfast.WithRecorder(rec))
//
// After a run the registry can be written for node_exporter's textfile collector
// with WriteTextfile, or scraped over HTTP with HTTPHandler.
package metrics
