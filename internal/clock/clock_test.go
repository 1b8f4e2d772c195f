package clock

import (
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNewTicker_NilLogger(t *testing.T) {
	assert.Panics(t, func() {
		NewTicker(time.Second, nil)
	})
}

func TestNewTicker_DefaultInterval(t *testing.T) {
	ticker := NewTicker(0, testLogger())
	assert.Equal(t, DefaultInterval, ticker.interval)
	assert.False(t, ticker.Running())
}

func TestTicker_StartStop(t *testing.T) {
	ticker := NewTicker(5*time.Millisecond, testLogger())

	var count atomic.Int32
	ticker.Start(func() { count.Add(1) })
	assert.True(t, ticker.Running())

	require.Eventually(t, func() bool { return count.Load() >= 3 }, time.Second, time.Millisecond)

	ticker.Stop()
	assert.False(t, ticker.Running())

	// Allow a tick that was already in flight to land
	time.Sleep(20 * time.Millisecond)
	stoppedAt := count.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stoppedAt, count.Load())
}

func TestTicker_RestartReplacesLoop(t *testing.T) {
	ticker := NewTicker(5*time.Millisecond, testLogger())

	var first, second atomic.Int32
	ticker.Start(func() { first.Add(1) })
	require.Eventually(t, func() bool { return first.Load() >= 1 }, time.Second, time.Millisecond)

	ticker.Start(func() { second.Add(1) })
	time.Sleep(20 * time.Millisecond)
	firstAfterRestart := first.Load()

	require.Eventually(t, func() bool { return second.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, firstAfterRestart, first.Load())

	ticker.Stop()
}

func TestTicker_StopFromInsideTick(t *testing.T) {
	ticker := NewTicker(5*time.Millisecond, testLogger())

	var count atomic.Int32
	ticker.Start(func() {
		count.Add(1)
		ticker.Stop()
	})

	require.Eventually(t, func() bool { return !ticker.Running() }, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(1), count.Load())
}

func TestTicker_StopTwice(t *testing.T) {
	ticker := NewTicker(time.Second, testLogger())
	ticker.Stop()
	ticker.Start(func() {})
	ticker.Stop()
	ticker.Stop()
	assert.False(t, ticker.Running())
}

func TestManual(t *testing.T) {
	manual := NewManual()
	assert.False(t, manual.Tick())

	ticks := 0
	manual.Start(func() { ticks++ })
	assert.True(t, manual.Running())
	assert.True(t, manual.Tick())
	assert.Equal(t, 3, manual.TickN(3))
	assert.Equal(t, 4, ticks)

	manual.Stop()
	assert.False(t, manual.Running())
	assert.Equal(t, 0, manual.TickN(5))
	assert.Equal(t, 4, ticks)
	assert.Equal(t, 1, manual.Starts())
	assert.Equal(t, 1, manual.Stops())
}

func TestManual_StopDuringTickN(t *testing.T) {
	manual := NewManual()
	ticks := 0
	manual.Start(func() {
		ticks++
		if ticks == 2 {
			manual.Stop()
		}
	})
	assert.Equal(t, 2, manual.TickN(10))
	assert.Equal(t, 2, ticks)
}
