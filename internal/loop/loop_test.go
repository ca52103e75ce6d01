package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsky/tonsky.me/internal/domain"
)

func startLoop(t *testing.T, clk clock.Clock) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(clk, 16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l, cancel
}

func TestLoop_PostRunsInOrder(t *testing.T) {
	l, _ := startLoop(t, clock.NewMock())

	var got []int
	for i := range 5 {
		require.True(t, l.Post(func() { got = append(got, i) }))
	}
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_AfterFuncFiresOnLoop(t *testing.T) {
	mock := clock.NewMock()
	l, _ := startLoop(t, mock)

	var fired atomic.Int32
	l.AfterFunc(time.Second, func() { fired.Add(1) })

	mock.Add(500 * time.Millisecond)
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.Equal(t, int32(0), fired.Load())

	mock.Add(500 * time.Millisecond)
	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestLoop_StoppedTimerNeverRuns(t *testing.T) {
	mock := clock.NewMock()
	l, _ := startLoop(t, mock)

	var fired atomic.Int32
	tm := l.AfterFunc(time.Second, func() { fired.Add(1) })
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())

	mock.Add(2 * time.Second)
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.Equal(t, int32(0), fired.Load())
}

func TestLoop_EveryTicksUntilStopped(t *testing.T) {
	mock := clock.NewMock()
	l, _ := startLoop(t, mock)

	var ticks atomic.Int32
	tm := l.Every(time.Second, func() { ticks.Add(1) })

	require.Eventually(t, func() bool {
		mock.Add(time.Second)
		return ticks.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, l.Call(context.Background(), func() { tm.Stop() }))
	n := ticks.Load()
	mock.Add(3 * time.Second)
	require.NoError(t, l.Call(context.Background(), func() {}))
	assert.Equal(t, n, ticks.Load())
}

func TestLoop_PanicDoesNotStopLoop(t *testing.T) {
	l, _ := startLoop(t, clock.NewMock())

	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Call(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_PostAfterStop(t *testing.T) {
	l, cancel := startLoop(t, clock.NewMock())
	require.NoError(t, l.Call(context.Background(), func() {}))
	cancel()

	require.Eventually(t, func() bool { return !l.Post(func() {}) }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, l.Call(context.Background(), func() {}), domain.ErrClosed)
}
