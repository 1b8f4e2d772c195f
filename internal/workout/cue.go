package workout

import "time"

// CueType identifies the kind of a Cue
type CueType int

const (
	CueTick          CueType = iota // Progress update, emitted once per processed tick
	CueCountdownBeep                // Short beep during the last three seconds of a phase
	CuePhaseEndBeep                 // Longer, higher beep when a phase runs out
	CueFinishFanfare                // Ascending three-tone sequence at the end of the run
)

func (t CueType) String() string {
	switch t {
	case CueTick:
		return "tick"
	case CueCountdownBeep:
		return "countdown_beep"
	case CuePhaseEndBeep:
		return "phase_end_beep"
	case CueFinishFanfare:
		return "finish_fanfare"
	default:
		return "unknown"
	}
}

// PitchClass selects the countdown beep pitch
type PitchClass int

const (
	PitchPrep PitchClass = iota // Countdown during PREP
	PitchMain                   // Countdown during every other phase
)

// Tone is one sound to play, Delay after the cue is received
type Tone struct {
	Delay       time.Duration
	FrequencyHz float64
	Duration    time.Duration
}

// Tone table
var (
	prepCountdownTone = Tone{FrequencyHz: 600, Duration: 100 * time.Millisecond}
	mainCountdownTone = Tone{FrequencyHz: 880, Duration: 100 * time.Millisecond}
	phaseEndTone      = Tone{FrequencyHz: 1200, Duration: 400 * time.Millisecond}
	fanfareTones      = []Tone{
		{Delay: 0, FrequencyHz: 600, Duration: 300 * time.Millisecond},
		{Delay: 200 * time.Millisecond, FrequencyHz: 800, Duration: 300 * time.Millisecond},
		{Delay: 400 * time.Millisecond, FrequencyHz: 1200, Duration: 800 * time.Millisecond},
	}
)

// Cue is an event emitted by the Scheduler for renderers and audio players.
// Cues are never stored by the scheduler.
type Cue struct {
	Type CueType

	// Tick fields
	Phase     Phase
	Remaining int // Seconds left in Phase
	Serie     int // Current serie, 1-indexed
	Series    int // Configured number of series

	// CountdownBeep field
	Pitch PitchClass

	// Audible cues carry the tones to play, in order
	Tones []Tone
}

// Audible reports whether the cue has anything to play
func (c Cue) Audible() bool {
	return len(c.Tones) > 0
}

func tickCue(state RunState) Cue {
	return Cue{
		Type:      CueTick,
		Phase:     state.Phase,
		Remaining: state.RemainingSeconds,
		Serie:     state.CurrentSerie,
		Series:    state.Config.Series,
	}
}

func countdownBeepCue(phase Phase) Cue {
	if phase == PhasePrep {
		return Cue{Type: CueCountdownBeep, Phase: phase, Pitch: PitchPrep, Tones: []Tone{prepCountdownTone}}
	}
	return Cue{Type: CueCountdownBeep, Phase: phase, Pitch: PitchMain, Tones: []Tone{mainCountdownTone}}
}

func phaseEndBeepCue(phase Phase) Cue {
	return Cue{Type: CuePhaseEndBeep, Phase: phase, Tones: []Tone{phaseEndTone}}
}

func finishFanfareCue() Cue {
	tones := make([]Tone, len(fanfareTones))
	copy(tones, fanfareTones)
	return Cue{Type: CueFinishFanfare, Phase: PhaseFinished, Tones: tones}
}

// CueSink receives cues in the order they are emitted
type CueSink interface {
	HandleCue(cue Cue)
}

// CueSinkFunc adapts a function to CueSink
type CueSinkFunc func(cue Cue)

func (f CueSinkFunc) HandleCue(cue Cue) {
	f(cue)
}

// MultiSink fans a cue out to several sinks, in order
type MultiSink []CueSink

func (m MultiSink) HandleCue(cue Cue) {
	for _, sink := range m {
		if sink != nil {
			sink.HandleCue(cue)
		}
	}
}
