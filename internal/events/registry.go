package events

import "sync"

// registry keeps listeners in registration order together with the
// replay state shared by CallbackEvent and ChannelEvent
type registry[T any, L any] struct {
	mu        sync.RWMutex
	entries   []registryEntry[L]
	nextID    uint64
	replay    bool
	last      T
	hasLatest bool
}

type registryEntry[L any] struct {
	id       uint64
	listener L
}

func newRegistry[T any, L any](replay bool) registry[T, L] {
	return registry[T, L]{replay: replay}
}

// add registers listener and returns its id plus the value to replay to it,
// if any
func (r *registry[T, L]) add(listener L) (uint64, T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, registryEntry[L]{id: id, listener: listener})
	return id, r.last, r.replay && r.hasLatest
}

func (r *registry[T, L]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// record stores value for replay and returns a snapshot of the listeners
func (r *registry[T, L]) record(value T) []L {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replay {
		r.last = value
		r.hasLatest = true
	}
	listeners := make([]L, len(r.entries))
	for i, entry := range r.entries {
		listeners[i] = entry.listener
	}
	return listeners
}

func (r *registry[T, L]) latest() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.hasLatest
}

func (r *registry[T, L]) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
