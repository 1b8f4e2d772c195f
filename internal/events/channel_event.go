package events

// ChannelEvent is a typed pub/sub where listeners are channels. Sends never
// block: a listener whose buffer is full misses that value. Consumers that
// only need the newest state should treat a receive as a wake-up and read
// the state from its owner.
type ChannelEvent[T any] struct {
	registry registry[T, chan<- T]
}

// NewChannelEvent creates a ChannelEvent. With replayLatest set, a channel
// registered after the first Notify immediately receives the most recent
// value (if it has room for it).
func NewChannelEvent[T any](replayLatest bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{registry: newRegistry[T, chan<- T](replayLatest)}
}

// Listen registers ch and returns the function that removes it
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("ChannelEvent: channel cannot be nil")
	}
	id, last, replay := e.registry.add(ch)
	if replay {
		trySend(ch, last)
	}
	return func() { e.registry.remove(id) }
}

// Notify sends value to every registered channel, in registration order,
// and returns how many channels accepted it
func (e *ChannelEvent[T]) Notify(value T) int {
	delivered := 0
	for _, ch := range e.registry.record(value) {
		if trySend(ch, value) {
			delivered++
		}
	}
	return delivered
}

// Latest returns the last notified value when replay is enabled
func (e *ChannelEvent[T]) Latest() (T, bool) {
	return e.registry.latest()
}

func (e *ChannelEvent[T]) ListenerCount() int {
	return e.registry.count()
}

func trySend[T any](ch chan<- T, value T) bool {
	select {
	case ch <- value:
		return true
	default:
		return false
	}
}
