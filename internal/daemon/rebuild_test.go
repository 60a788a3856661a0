package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRebuilder_CoalescesWhileRunning(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	var mu sync.Mutex
	var triggers []string

	r := NewRebuilder(func(_ context.Context, trigger string) {
		n := calls.Add(1)
		mu.Lock()
		triggers = append(triggers, trigger)
		mu.Unlock()
		if n == 1 {
			<-release
		}
	}, 10*time.Millisecond)
	r.Start(t.Context())

	r.Request("first")
	require.Eventually(t, r.Running, time.Second, 5*time.Millisecond)

	for i := 0; i < 5; i++ {
		r.Request("burst")
		time.Sleep(2 * time.Millisecond)
	}
	close(release)

	require.Eventually(t, func() bool { return calls.Load() == 2 && !r.Running() }, 2*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(2), calls.Load())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"first", "burst"}, triggers)
}

func TestRebuilder_TriggerDebounces(t *testing.T) {
	var calls atomic.Int32
	r := NewRebuilder(func(context.Context, string) { calls.Add(1) }, 30*time.Millisecond)
	r.Start(t.Context())

	for i := 0; i < 10; i++ {
		r.Trigger(TriggerConfigChange)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())
}

func TestRebuilder_StopsWithContext(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(t.Context())
	r := NewRebuilder(func(context.Context, string) { calls.Add(1) }, 0)
	r.Start(ctx)
	cancel()

	time.Sleep(20 * time.Millisecond)
	r.Request("late")
	time.Sleep(20 * time.Millisecond)
	require.Zero(t, calls.Load())
}

func TestRebuilder_WaitBlocksForInflightRun(t *testing.T) {
	release := make(chan struct{})
	var done atomic.Bool
	r := NewRebuilder(func(context.Context, string) {
		<-release
		done.Store(true)
	}, 0)
	r.Start(t.Context())

	r.Request("startup")
	require.Eventually(t, r.Running, time.Second, 5*time.Millisecond)

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	r.Wait()
	require.True(t, done.Load())
}
