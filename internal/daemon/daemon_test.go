package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/overfastsite/internal/eventstore"
	"git.home.luguber.info/inful/overfastsite/internal/generator"
	"git.home.luguber.info/inful/overfastsite/internal/metrics"
)

func fakeBuild(dir string, calls *atomic.Int32, fail bool) BuildFunc {
	return func(context.Context) (*generator.Report, error) {
		calls.Add(1)
		report := &generator.Report{RunID: "r", Start: time.Now()}
		if fail {
			report.Outcome = metrics.OutcomeFailed
			return report, errors.New("write failed")
		}
		path := filepath.Join(dir, "index.html")
		if err := os.WriteFile(path, []byte("<!DOCTYPE html><title>ok</title>"), 0o600); err != nil {
			return report, err
		}
		report.OutputPath = path
		report.Outcome = metrics.OutcomeSuccess
		report.End = time.Now()
		return report, nil
	}
}

func TestNew_Validates(t *testing.T) {
	_, err := New(Options{Interval: time.Minute}, nil)
	require.Error(t, err)

	_, err = New(Options{}, func(context.Context) (*generator.Report, error) { return nil, nil })
	require.Error(t, err)
}

func TestRunStatus_Health(t *testing.T) {
	s := newRunStatus()
	require.Equal(t, HealthStatusStarting, s.health(false, time.Time{}, false).Status)

	s.record(&generator.Report{Outcome: metrics.OutcomeFailed}, errors.New("boom"))
	resp := s.health(false, time.Time{}, false)
	require.Equal(t, HealthStatusUnhealthy, resp.Status)
	require.Equal(t, "boom", resp.LastError)

	s.record(&generator.Report{Outcome: metrics.OutcomeDegraded}, nil)
	require.Equal(t, HealthStatusDegraded, s.health(false, time.Time{}, false).Status)

	s.record(&generator.Report{Outcome: metrics.OutcomeSuccess}, nil)
	next := time.Now().Add(time.Hour)
	resp = s.health(true, next, true)
	require.Equal(t, HealthStatusHealthy, resp.Status)
	require.True(t, resp.Rebuilding)
	require.NotNil(t, resp.NextRun)

	s.record(nil, errors.New("later failure"))
	require.Equal(t, HealthStatusDegraded, s.health(false, time.Time{}, false).Status)
}

func TestHTTPServer_Handler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("hello"), 0o600))

	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ev, err := eventstore.NewRunCompleted("run-1", eventstore.RunCompletedMeta{Outcome: eventstore.StatusSuccess})
	require.NoError(t, err)
	require.NoError(t, eventstore.AppendEvent(t.Context(), store, ev))

	srv := &HTTPServer{
		root:    dir,
		health:  func() HealthResponse { return HealthResponse{Status: HealthStatusHealthy} },
		metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "overfastsite_up 1\n") }),
		history: eventstore.NewRunHistoryProjection(store, 10),
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	body := get(t, ts.URL+"/")
	require.Equal(t, "hello", body)

	var health HealthResponse
	require.NoError(t, json.Unmarshal([]byte(get(t, ts.URL+"/healthz")), &health))
	require.Equal(t, HealthStatusHealthy, health.Status)

	require.Contains(t, get(t, ts.URL+"/metrics"), "overfastsite_up")

	var history []eventstore.RunSummary
	require.NoError(t, json.Unmarshal([]byte(get(t, ts.URL+"/history")), &history))
	require.Len(t, history, 1)
	require.Equal(t, "run-1", history[0].RunID)
}

func TestDaemon_RunServesAndRebuildsOnConfigChange(t *testing.T) {
	out := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "overfastsite.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("site:\n  title: one\n"), 0o600))

	var calls atomic.Int32
	d, err := New(Options{
		ConfigPath: configPath,
		OutputDir:  out,
		Addr:       "127.0.0.1:0",
		Interval:   time.Hour,
		Debounce:   20 * time.Millisecond,
	}, fakeBuild(out, &calls, false))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	select {
	case <-d.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not become ready")
	}
	require.Equal(t, int32(1), calls.Load())

	base := "http://" + d.Addr()
	require.Contains(t, get(t, base+"/"), "<title>ok</title>")

	var health HealthResponse
	require.NoError(t, json.Unmarshal([]byte(get(t, base+"/healthz")), &health))
	require.Equal(t, HealthStatusHealthy, health.Status)
	require.NotNil(t, health.NextRun)

	require.NoError(t, os.WriteFile(configPath, []byte("site:\n  title: two\n"), 0o600))
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestDaemon_FailedStartupBuildIsUnhealthy(t *testing.T) {
	out := t.TempDir()
	var calls atomic.Int32
	d, err := New(Options{OutputDir: out, Addr: "127.0.0.1:0", Interval: time.Hour}, fakeBuild(out, &calls, true))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	go func() { _ = d.Run(ctx) }()
	<-d.Ready()

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "http://"+d.Addr()+"/healthz", http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, int32(1), calls.Load())
}

func get(t *testing.T, url string) string {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}
