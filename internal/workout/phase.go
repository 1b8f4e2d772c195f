package workout

import "fmt"

// PrepSeconds is the fixed length of the PREP countdown that opens every run
const PrepSeconds = 5

// Phase is one named segment of a workout run
type Phase int

const (
	PhasePrep     Phase = iota // Get-ready countdown before the first serie
	PhaseWork                  // Work interval of a serie
	PhaseRest                  // Rest interval between two series
	PhaseCooldown              // Optional cooldown after the last serie
	PhaseFinished              // Run complete
)

var phaseNames = map[Phase]string{
	PhasePrep:     "PREP",
	PhaseWork:     "WORK",
	PhaseRest:     "REST",
	PhaseCooldown: "COOLDOWN",
	PhaseFinished: "FINISHED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Config is the immutable description of a workout
type Config struct {
	Series          int // Number of work/rest series, at least 1
	WorkSeconds     int // Length of each WORK phase
	RestSeconds     int // Length of each REST phase (0 skips rest)
	CooldownSeconds int // Length of the COOLDOWN phase (0 skips cooldown)
}

// Validate reports an *InvalidConfigError for the first offending field
func (c Config) Validate() error {
	if c.Series < 1 {
		return &InvalidConfigError{Field: "series", Value: c.Series}
	}
	if c.WorkSeconds < 0 {
		return &InvalidConfigError{Field: "work", Value: c.WorkSeconds}
	}
	if c.RestSeconds < 0 {
		return &InvalidConfigError{Field: "rest", Value: c.RestSeconds}
	}
	if c.CooldownSeconds < 0 {
		return &InvalidConfigError{Field: "cooldown", Value: c.CooldownSeconds}
	}
	return nil
}

// TotalSeconds returns the visible length of a run, PREP included.
// Zero-length REST and COOLDOWN phases are skipped and contribute nothing.
// A zero-length WORK phase is counted as 0 here but still takes one tick
// (and sounds its end beep), so with WorkSeconds == 0 a run lasts Series
// ticks longer than this.
func (c Config) TotalSeconds() int {
	if c.Series < 1 {
		return PrepSeconds
	}
	return PrepSeconds + c.Series*c.WorkSeconds + (c.Series-1)*c.RestSeconds + c.CooldownSeconds
}
