package workout

// NextStep is the outcome of Advance: either the next countdown to run or
// the end of the workout
type NextStep struct {
	Phase    Phase
	Duration int // Seconds, > 0 except for a zero-length WORK phase
	Serie    int
	Terminal bool
}

// Advance computes the phase that follows (phase, serie) for the given config.
// REST and COOLDOWN phases of zero length are skipped. WORK is never skipped.
func Advance(config Config, phase Phase, serie int) NextStep {
	for {
		next := transition(config, phase, serie)
		if next.Terminal {
			return next
		}
		if next.Duration > 0 || next.Phase == PhaseWork {
			return next
		}
		phase, serie = next.Phase, next.Serie
	}
}

func transition(config Config, phase Phase, serie int) NextStep {
	switch phase {
	case PhasePrep:
		return NextStep{Phase: PhaseWork, Duration: config.WorkSeconds, Serie: serie}
	case PhaseWork:
		if serie < config.Series {
			return NextStep{Phase: PhaseRest, Duration: config.RestSeconds, Serie: serie}
		}
		if config.CooldownSeconds > 0 {
			return NextStep{Phase: PhaseCooldown, Duration: config.CooldownSeconds, Serie: serie}
		}
		return NextStep{Phase: PhaseFinished, Serie: serie, Terminal: true}
	case PhaseRest:
		return NextStep{Phase: PhaseWork, Duration: config.WorkSeconds, Serie: serie + 1}
	default:
		// COOLDOWN and FINISHED both end the run
		return NextStep{Phase: PhaseFinished, Serie: serie, Terminal: true}
	}
}
