package clock

import (
	"log"
	"sync"
	"time"

	"github.com/lowaak/interval-clock/internal/go_func_utils"
)

// DefaultInterval is the period of a workout tick
const DefaultInterval = time.Second

// Ticker is a periodic tick source backed by time.Ticker. Seconds missed
// while the receiver is busy or the process is suspended are dropped, never
// delivered as a burst.
type Ticker struct {
	interval time.Duration
	logger   *log.Logger

	mu     sync.Mutex
	stopCh chan struct{}
}

// NewTicker creates a stopped Ticker
func NewTicker(interval time.Duration, logger *log.Logger) *Ticker {
	if logger == nil {
		panic("Ticker: logger cannot be nil")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval, logger: logger}
}

// Start begins calling onTick every interval. A previous loop, if any, is
// stopped first so there is never more than one.
func (t *Ticker) Start(onTick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopCh != nil {
		close(t.stopCh)
	}
	stopCh := make(chan struct{})
	t.stopCh = stopCh
	go_func_utils.SafeGo(t.logger, "clock.Ticker", func() { t.run(stopCh, onTick) })
}

// Stop ends the tick loop without waiting for it, so it may be called from
// inside onTick
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
}

// Running reports whether a tick loop is active
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopCh != nil
}

func (t *Ticker) run(stopCh <-chan struct{}, onTick func()) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// Stop may race with a pending tick
			select {
			case <-stopCh:
				return
			default:
			}
			onTick()
		}
	}
}
