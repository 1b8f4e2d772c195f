package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/lowaak/interval-clock/internal/workout"
)

// Beeper plays a single tone. Terminal implementations cannot honour
// frequency or duration and ring the bell instead.
type Beeper interface {
	Beep(tone workout.Tone) error
}

// ScreenBeeper rings the bell of a tcell screen, the one the curses UI
// draws on
type ScreenBeeper struct {
	screen tcell.Screen
}

func NewScreenBeeper(screen tcell.Screen) *ScreenBeeper {
	if screen == nil {
		panic("ScreenBeeper: screen cannot be nil")
	}
	return &ScreenBeeper{screen: screen}
}

func (b *ScreenBeeper) Beep(tone workout.Tone) error {
	if err := b.screen.Beep(); err != nil {
		return fmt.Errorf("screen beep %.0f Hz: %w", tone.FrequencyHz, err)
	}
	return nil
}

// BellBeeper writes the ASCII bell character to a plain console
type BellBeeper struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellBeeper(w io.Writer) *BellBeeper {
	if w == nil {
		panic("BellBeeper: writer cannot be nil")
	}
	return &BellBeeper{w: w}
}

func (b *BellBeeper) Beep(tone workout.Tone) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := io.WriteString(b.w, "\a"); err != nil {
		return fmt.Errorf("bell %.0f Hz: %w", tone.FrequencyHz, err)
	}
	return nil
}
