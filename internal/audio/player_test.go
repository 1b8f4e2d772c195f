package audio

import (
	"bytes"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-clock/internal/workout"
)

type fakeBeeper struct {
	mu    sync.Mutex
	tones []workout.Tone
	err   error
}

func (f *fakeBeeper) Beep(tone workout.Tone) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tones = append(f.tones, tone)
	return f.err
}

func (f *fakeBeeper) played() []workout.Tone {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]workout.Tone, len(f.tones))
	copy(result, f.tones)
	return result
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var fanfare = workout.Cue{
	Type:  workout.CueFinishFanfare,
	Phase: workout.PhaseFinished,
	Tones: []workout.Tone{
		{Delay: 0, FrequencyHz: 600, Duration: 300 * time.Millisecond},
		{Delay: 20 * time.Millisecond, FrequencyHz: 800, Duration: 300 * time.Millisecond},
		{Delay: 40 * time.Millisecond, FrequencyHz: 1200, Duration: 800 * time.Millisecond},
	},
}

func TestNewPlayer_NilArgs(t *testing.T) {
	assert.Panics(t, func() { NewPlayer(nil, testLogger()) })
	assert.Panics(t, func() { NewPlayer(&fakeBeeper{}, nil) })
}

func TestPlayer_IgnoresSilentCues(t *testing.T) {
	beeper := &fakeBeeper{}
	player := NewPlayer(beeper, testLogger())

	player.HandleCue(workout.Cue{Type: workout.CueTick, Phase: workout.PhaseWork, Remaining: 12})
	assert.Empty(t, beeper.played())
}

func TestPlayer_PlaysUndelayedToneSynchronously(t *testing.T) {
	beeper := &fakeBeeper{}
	player := NewPlayer(beeper, testLogger())

	tone := workout.Tone{FrequencyHz: 880, Duration: 100 * time.Millisecond}
	player.HandleCue(workout.Cue{Type: workout.CueCountdownBeep, Pitch: workout.PitchMain, Tones: []workout.Tone{tone}})
	assert.Equal(t, []workout.Tone{tone}, beeper.played())
	assert.Equal(t, 0, player.Pending())
}

func TestPlayer_FanfareInOrder(t *testing.T) {
	beeper := &fakeBeeper{}
	player := NewPlayer(beeper, testLogger())
	defer player.Close()

	player.HandleCue(fanfare)
	require.Len(t, beeper.played(), 1, "first tone has no delay")

	require.Eventually(t, func() bool { return len(beeper.played()) == 3 }, time.Second, 5*time.Millisecond)
	played := beeper.played()
	assert.Equal(t, []float64{600, 800, 1200}, []float64{played[0].FrequencyHz, played[1].FrequencyHz, played[2].FrequencyHz})
	assert.Equal(t, 0, player.Pending())
}

func TestPlayer_CloseCancelsScheduledTones(t *testing.T) {
	beeper := &fakeBeeper{}
	player := NewPlayer(beeper, testLogger())

	cue := fanfare
	cue.Tones = []workout.Tone{
		{Delay: 0, FrequencyHz: 600},
		{Delay: time.Hour, FrequencyHz: 800},
	}
	player.HandleCue(cue)
	assert.Equal(t, 1, player.Pending())

	player.Close()
	assert.Equal(t, 0, player.Pending())
	assert.Len(t, beeper.played(), 1)

	player.HandleCue(cue)
	assert.Equal(t, 0, player.Pending())
	assert.Len(t, beeper.played(), 2)
}

func TestPlayer_Muted(t *testing.T) {
	beeper := &fakeBeeper{}
	player := NewPlayer(beeper, testLogger())
	defer player.Close()

	assert.True(t, player.ToggleMuted())
	assert.True(t, player.Muted())
	player.HandleCue(fanfare)
	assert.Empty(t, beeper.played())
	assert.Equal(t, 0, player.Pending())

	assert.False(t, player.ToggleMuted())
	player.HandleCue(fanfare)
	player.SetMuted(true)
	time.Sleep(80 * time.Millisecond)
	assert.Len(t, beeper.played(), 1, "tones scheduled before muting stay silent")
}

func TestPlayer_BeeperErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	beeper := &fakeBeeper{err: errors.New("no tty")}
	player := NewPlayer(beeper, log.New(&buf, "", 0))

	assert.NotPanics(t, func() {
		player.HandleCue(workout.Cue{Type: workout.CuePhaseEndBeep, Tones: []workout.Tone{{FrequencyHz: 1200}}})
	})
	assert.Contains(t, buf.String(), "Player: phase_end_beep: no tty")
}

func TestBellBeeper(t *testing.T) {
	var buf bytes.Buffer
	beeper := NewBellBeeper(&buf)
	require.NoError(t, beeper.Beep(workout.Tone{FrequencyHz: 600}))
	require.NoError(t, beeper.Beep(workout.Tone{FrequencyHz: 880}))
	assert.Equal(t, "\a\a", buf.String())

	assert.Panics(t, func() { NewBellBeeper(nil) })
}

func TestScreenBeeper(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	beeper := NewScreenBeeper(screen)
	assert.NoError(t, beeper.Beep(workout.Tone{FrequencyHz: 1200}))
	assert.Panics(t, func() { NewScreenBeeper(nil) })
}
