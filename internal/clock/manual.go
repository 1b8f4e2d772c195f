package clock

import "sync"

// Manual is a tick source driven by explicit Tick calls, for tests and for
// stepping a workout without waiting on wall-clock time
type Manual struct {
	mu     sync.Mutex
	onTick func()
	starts int
	stops  int
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Start(onTick func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTick = onTick
	m.starts++
}

func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTick = nil
	m.stops++
}

// Tick delivers one tick and reports whether the source was running
func (m *Manual) Tick() bool {
	m.mu.Lock()
	onTick := m.onTick
	m.mu.Unlock()
	if onTick == nil {
		return false
	}
	onTick()
	return true
}

// TickN delivers up to n ticks and returns how many were delivered
func (m *Manual) TickN(n int) int {
	delivered := 0
	for i := 0; i < n; i++ {
		if !m.Tick() {
			break
		}
		delivered++
	}
	return delivered
}

func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onTick != nil
}

// Starts returns how many times Start was called
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Stops returns how many times Stop was called
func (m *Manual) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}
