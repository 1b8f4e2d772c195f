package audio

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lowaak/interval-clock/internal/workout"
)

// Player is a workout.CueSink that plays the tones of audible cues. Tones
// with no delay are played before HandleCue returns; delayed tones (the
// finish fanfare) are scheduled on timers owned by the Player.
type Player struct {
	beeper Beeper
	logger *log.Logger
	muted  atomic.Bool

	mu      sync.Mutex
	pending map[*time.Timer]struct{}
	closed  bool
}

func NewPlayer(beeper Beeper, logger *log.Logger) *Player {
	if beeper == nil {
		panic("Player: beeper cannot be nil")
	}
	if logger == nil {
		panic("Player: logger cannot be nil")
	}
	return &Player{
		beeper:  beeper,
		logger:  logger,
		pending: make(map[*time.Timer]struct{}),
	}
}

// HandleCue implements workout.CueSink
func (p *Player) HandleCue(cue workout.Cue) {
	if !cue.Audible() || p.muted.Load() {
		return
	}
	for _, tone := range cue.Tones {
		if tone.Delay <= 0 {
			p.play(cue.Type, tone)
			continue
		}
		p.schedule(cue.Type, tone)
	}
}

func (p *Player) schedule(cueType workout.CueType, tone workout.Tone) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(tone.Delay, func() {
		p.mu.Lock()
		_, live := p.pending[timer]
		delete(p.pending, timer)
		p.mu.Unlock()
		if live && !p.muted.Load() {
			p.play(cueType, tone)
		}
	})
	p.pending[timer] = struct{}{}
}

func (p *Player) play(cueType workout.CueType, tone workout.Tone) {
	if err := p.beeper.Beep(tone); err != nil {
		p.logger.Printf("Player: %s: %v", cueType, err)
	}
}

// SetMuted silences the player, including tones already scheduled
func (p *Player) SetMuted(muted bool) {
	p.muted.Store(muted)
	p.logger.Printf("Player: muted=%v", muted)
}

// ToggleMuted flips the muted flag and returns the new value
func (p *Player) ToggleMuted() bool {
	for {
		old := p.muted.Load()
		if p.muted.CompareAndSwap(old, !old) {
			p.logger.Printf("Player: muted=%v", !old)
			return !old
		}
	}
}

func (p *Player) Muted() bool {
	return p.muted.Load()
}

// Pending returns the number of scheduled tones not yet played
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close cancels scheduled tones. Cues received afterwards only play their
// undelayed tones.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for timer := range p.pending {
		timer.Stop()
		delete(p.pending, timer)
	}
}
