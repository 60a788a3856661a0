package eventstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func appendRun(t *testing.T, store Store, runID string, failed []string, writeErr string) {
	t.Helper()
	ctx := t.Context()

	ev, err := NewRunStarted(runID, RunStartedMeta{Trigger: "cli", OutputDir: "dist"})
	require.NoError(t, err)
	require.NoError(t, AppendEvent(ctx, store, ev))

	failedSet := map[string]bool{}
	for _, f := range failed {
		failedSet[f] = true
	}
	for _, endpoint := range []string{"heroes", "roles", "gamemodes", "maps"} {
		ev, err = NewCollectionFetched(runID, CollectionFetchedMeta{Endpoint: endpoint, Success: !failedSet[endpoint], Count: 3})
		require.NoError(t, err)
		require.NoError(t, AppendEvent(ctx, store, ev))
	}

	if writeErr != "" {
		ev, err = NewRunFailed(runID, "write", writeErr)
		require.NoError(t, err)
		require.NoError(t, AppendEvent(ctx, store, ev))
		return
	}

	ev, err = NewPageWritten(runID, "dist/index.html", 2048)
	require.NoError(t, err)
	require.NoError(t, AppendEvent(ctx, store, ev))

	outcome := StatusSuccess
	if len(failed) > 0 {
		outcome = StatusDegraded
	}
	ev, err = NewRunCompleted(runID, RunCompletedMeta{Outcome: outcome, OutputPath: "dist/index.html", Failed: failed})
	require.NoError(t, err)
	require.NoError(t, AppendEvent(ctx, store, ev))
}

func TestRunHistoryProjection_Rebuild(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	appendRun(t, store, "run-1", nil, "")
	appendRun(t, store, "run-2", []string{"maps"}, "")
	appendRun(t, store, "run-3", nil, "permission denied")

	projection := NewRunHistoryProjection(store, 10)
	require.NoError(t, projection.Rebuild(t.Context()))
	require.False(t, projection.LastSyncTime().IsZero())

	history := projection.History()
	require.Len(t, history, 3)
	require.Equal(t, "run-3", history[0].RunID)

	last, ok := projection.LastCompleted()
	require.True(t, ok)
	require.Equal(t, StatusFailed, last.Status)
	require.Equal(t, "write", last.ErrorStage)
	require.Equal(t, "permission denied", last.ErrorMessage)

	degraded, ok := projection.Run("run-2")
	require.True(t, ok)
	require.Equal(t, StatusDegraded, degraded.Status)
	require.Equal(t, []string{"maps"}, degraded.Failed)
	require.Equal(t, 3, degraded.Fetched)
	require.Equal(t, 2048, degraded.PageBytes)
	require.Equal(t, "cli", degraded.Trigger)

	ok1, _ := projection.Run("run-1")
	require.Equal(t, StatusSuccess, ok1.Status)
	require.Equal(t, "dist/index.html", ok1.OutputPath)
}

func TestRunHistoryProjection_BoundedHistory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	for _, id := range []string{"a", "b", "c"} {
		appendRun(t, store, id, nil, "")
	}

	projection := NewRunHistoryProjection(store, 2)
	require.NoError(t, projection.Rebuild(t.Context()))
	require.Len(t, projection.History(), 2)

	_, ok := projection.Run("a")
	require.False(t, ok)
}

func TestRunHistoryProjection_ApplyLive(t *testing.T) {
	projection := NewRunHistoryProjection(nil, 0)

	ev, err := NewRunStarted("live", RunStartedMeta{Trigger: "schedule"})
	require.NoError(t, err)
	projection.Apply(ev)

	running, ok := projection.Run("live")
	require.True(t, ok)
	require.Equal(t, StatusRunning, running.Status)
	require.Empty(t, projection.History())

	ev, err = NewRunCompleted("live", RunCompletedMeta{Outcome: StatusSuccess})
	require.NoError(t, err)
	projection.Apply(ev)

	require.Len(t, projection.History(), 1)
}
