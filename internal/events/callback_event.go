package events

// CallbackEvent is a typed pub/sub where listeners are plain functions.
// Listeners are called synchronously, in registration order, outside any
// lock, so a listener may register or unregister listeners itself.
type CallbackEvent[T any] struct {
	registry registry[T, func(T)]
}

// NewCallbackEvent creates a CallbackEvent. With replayLatest set, a
// listener registered after the first Notify is called at once with the
// most recent value.
func NewCallbackEvent[T any](replayLatest bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{registry: newRegistry[T, func(T)](replayLatest)}
}

// Listen registers callback and returns the function that removes it
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("CallbackEvent: callback cannot be nil")
	}
	id, last, replay := e.registry.add(callback)
	if replay {
		callback(last)
	}
	return func() { e.registry.remove(id) }
}

// Notify calls every registered callback with value
func (e *CallbackEvent[T]) Notify(value T) {
	for _, callback := range e.registry.record(value) {
		callback(value)
	}
}

// Latest returns the last notified value when replay is enabled
func (e *CallbackEvent[T]) Latest() (T, bool) {
	return e.registry.latest()
}

func (e *CallbackEvent[T]) ListenerCount() int {
	return e.registry.count()
}
