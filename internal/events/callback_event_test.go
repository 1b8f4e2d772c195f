package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackEvent_ListenNotify(t *testing.T) {
	event := NewCallbackEvent[string](false)
	received := make([]string, 0)

	unregister := event.Listen(func(value string) {
		received = append(received, value)
	})
	assert.Equal(t, 1, event.ListenerCount())

	event.Notify("work")
	event.Notify("rest")
	assert.Equal(t, []string{"work", "rest"}, received)

	unregister()
	assert.Equal(t, 0, event.ListenerCount())

	event.Notify("cooldown")
	assert.Equal(t, []string{"work", "rest"}, received)
}

func TestCallbackEvent_RegistrationOrder(t *testing.T) {
	event := NewCallbackEvent[int](false)
	order := make([]string, 0)

	for _, name := range []string{"view", "audio", "console", "log"} {
		name := name
		event.Listen(func(int) { order = append(order, name) })
	}

	event.Notify(1)
	event.Notify(2)
	assert.Equal(t, []string{
		"view", "audio", "console", "log",
		"view", "audio", "console", "log",
	}, order)
}

func TestCallbackEvent_UnregisterKeepsOrder(t *testing.T) {
	event := NewCallbackEvent[int](false)
	order := make([]int, 0)

	unregisters := make([]func(), 0)
	for i := 0; i < 5; i++ {
		i := i
		unregisters = append(unregisters, event.Listen(func(int) { order = append(order, i) }))
	}
	unregisters[1]()
	unregisters[3]()
	unregisters[3]()

	event.Notify(0)
	assert.Equal(t, []int{0, 2, 4}, order)
	assert.Equal(t, 3, event.ListenerCount())
}

func TestCallbackEvent_ReplayLatest(t *testing.T) {
	event := NewCallbackEvent[int](true)

	_, ok := event.Latest()
	assert.False(t, ok)

	calls := 0
	event.Listen(func(int) { calls++ })
	assert.Equal(t, 0, calls, "nothing to replay before the first Notify")

	event.Notify(7)
	event.Notify(9)

	var replayed []int
	event.Listen(func(value int) { replayed = append(replayed, value) })
	assert.Equal(t, []int{9}, replayed)

	latest, ok := event.Latest()
	assert.True(t, ok)
	assert.Equal(t, 9, latest)
}

func TestCallbackEvent_NoReplay(t *testing.T) {
	event := NewCallbackEvent[int](false)
	event.Notify(3)

	calls := 0
	event.Listen(func(int) { calls++ })
	assert.Equal(t, 0, calls)

	_, ok := event.Latest()
	assert.False(t, ok)
}

func TestCallbackEvent_NilCallback(t *testing.T) {
	event := NewCallbackEvent[int](false)
	assert.Panics(t, func() { event.Listen(nil) })
}

func TestCallbackEvent_UnregisterDuringNotify(t *testing.T) {
	event := NewCallbackEvent[int](false)
	calls := 0

	var unregister func()
	unregister = event.Listen(func(int) {
		calls++
		unregister()
	})
	other := 0
	event.Listen(func(int) { other++ })

	event.Notify(1)
	event.Notify(2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestCallbackEvent_ListenDuringNotify(t *testing.T) {
	event := NewCallbackEvent[int](false)
	late := 0
	event.Listen(func(int) {
		event.Listen(func(int) { late++ })
	})

	event.Notify(1)
	assert.Equal(t, 0, late, "listeners added during Notify only see later values")
	event.Notify(2)
	assert.Equal(t, 1, late)
}

func TestCallbackEvent_Concurrent(t *testing.T) {
	event := NewCallbackEvent[int](true)
	var mu sync.Mutex
	sum := 0

	var wg sync.WaitGroup
	unregisters := make(chan func(), 10)
	wg.Add(10)
	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()
			unregisters <- event.Listen(func(value int) {
				mu.Lock()
				sum += value
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	close(unregisters)
	require.Equal(t, 10, event.ListenerCount())

	wg.Add(5)
	for i := 0; i < 5; i++ {
		go func() {
			defer wg.Done()
			event.Notify(1)
		}()
	}
	wg.Wait()

	mu.Lock()
	assert.Equal(t, 50, sum)
	mu.Unlock()

	for unregister := range unregisters {
		unregister()
	}
	assert.Equal(t, 0, event.ListenerCount())
}
