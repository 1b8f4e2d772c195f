package trainer

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-clock/internal/clock"
	"github.com/lowaak/interval-clock/internal/workout"
)

// syncBuffer is a bytes.Buffer safe for the ticking goroutine and the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimRight(b.buf.String(), "\n"), "\n")
}

func startConsoleRun(t *testing.T, ctx context.Context, runner *ConsoleRunner, source *clock.Manual, config workout.Config) <-chan error {
	t.Helper()
	result := make(chan error, 1)
	go func() { result <- runner.Run(ctx, config) }()
	require.Eventually(t, source.Running, eventuallyTimeout, time.Millisecond)
	return result
}

func TestNewConsoleRunner_NilArgs(t *testing.T) {
	assert.PanicsWithValue(t, "ConsoleRunner: out cannot be nil", func() {
		NewConsoleRunner(NewConsoleRunnerArg{Source: clock.NewManual(), Logger: testLogger()})
	})
	assert.PanicsWithValue(t, "ConsoleRunner: logger cannot be nil", func() {
		NewConsoleRunner(NewConsoleRunnerArg{Out: &syncBuffer{}, Source: clock.NewManual()})
	})
}

func TestConsoleRunner_PrintsEverySecond(t *testing.T) {
	out := &syncBuffer{}
	source := clock.NewManual()
	audio := &recordingAudio{}
	runner := NewConsoleRunner(NewConsoleRunnerArg{Out: out, Source: source, Audio: audio, Logger: testLogger()})
	config := workout.Config{Series: 1, WorkSeconds: 2, RestSeconds: 0, CooldownSeconds: 0}

	result := startConsoleRun(t, context.Background(), runner, source, config)
	assert.Equal(t, config.TotalSeconds(), source.TickN(1000))

	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(eventuallyTimeout):
		t.Fatal("run did not return")
	}

	lines := out.lines()
	require.Len(t, lines, 1+config.TotalSeconds())
	assert.Equal(t, "PREP         5  Get Ready!", lines[0])
	assert.Equal(t, "WORK         2  Series: 1 / 1", lines[5])
	assert.Equal(t, "FINISHED  DONE  Great Job!", lines[len(lines)-1])

	// The audio sink sees every cue; the fanfare precedes the final tick
	types := audio.types()
	require.GreaterOrEqual(t, len(types), 2)
	assert.Equal(t, workout.CueTick, types[len(types)-1])
	assert.Equal(t, workout.CueFinishFanfare, types[len(types)-2])
}

func TestConsoleRunner_CancelStops(t *testing.T) {
	out := &syncBuffer{}
	source := clock.NewManual()
	runner := NewConsoleRunner(NewConsoleRunnerArg{Out: out, Source: source, Logger: testLogger()})
	ctx, cancel := context.WithCancel(context.Background())

	result := startConsoleRun(t, ctx, runner, source, DefaultSetup)
	source.TickN(2)
	cancel()

	select {
	case err := <-result:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(eventuallyTimeout):
		t.Fatal("run did not return")
	}
	assert.False(t, source.Running())
	lines := out.lines()
	assert.Equal(t, "Stopped", lines[len(lines)-1])
}

func TestConsoleRunner_InvalidConfig(t *testing.T) {
	runner := NewConsoleRunner(NewConsoleRunnerArg{Out: &syncBuffer{}, Source: clock.NewManual(), Logger: testLogger()})

	err := runner.Run(context.Background(), workout.Config{Series: 0})
	var invalid *workout.InvalidConfigError
	assert.ErrorAs(t, err, &invalid)
}

func TestConsoleRunner_TogglePause(t *testing.T) {
	out := &syncBuffer{}
	source := clock.NewManual()
	runner := NewConsoleRunner(NewConsoleRunnerArg{Out: out, Source: source, Logger: testLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result := startConsoleRun(t, ctx, runner, source, DefaultSetup)
	assert.True(t, runner.TogglePause())
	source.TickN(3)
	assert.Equal(t, []string{"PREP         5  Get Ready!", "Paused (Enter to resume)"}, out.lines())
	assert.False(t, runner.TogglePause())
	source.Tick()
	lines := out.lines()
	assert.Equal(t, []string{"Resumed", "PREP         4  Get Ready!"}, lines[len(lines)-2:])

	cancel()
	<-result
}

func TestConsoleRunner_WatchInput(t *testing.T) {
	out := &syncBuffer{}
	source := clock.NewManual()
	runner := NewConsoleRunner(NewConsoleRunnerArg{Out: out, Source: source, Logger: testLogger()})
	in, input := io.Pipe()
	defer input.Close()

	result := startConsoleRun(t, context.Background(), runner, source, DefaultSetup)
	runner.WatchInput(in)

	_, err := io.WriteString(input, "p\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return runner.scheduler.Status() == workout.StatusPaused }, eventuallyTimeout, time.Millisecond)

	_, err = io.WriteString(input, "\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return runner.scheduler.Status() == workout.StatusRunning }, eventuallyTimeout, time.Millisecond)

	_, err = io.WriteString(input, "x\ns\n")
	require.NoError(t, err)
	select {
	case err := <-result:
		assert.ErrorIs(t, err, ErrStopped)
	case <-time.After(eventuallyTimeout):
		t.Fatal("run did not return")
	}
	assert.False(t, source.Running())
	lines := out.lines()
	assert.Equal(t, "Stopped", lines[len(lines)-1])
}
