package trainer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lowaak/interval-clock/internal/workout"
)

// TimerText is what the timer screen (or the console) shows for a state
type TimerText struct {
	PhaseLabel  string
	Time        string
	Series      string
	PauseButton string // Empty when the button is hidden
}

// DescribeTimer renders a TimerState into display strings
func DescribeTimer(state TimerState) TimerText {
	if state.Phase == workout.PhaseFinished {
		return TimerText{
			PhaseLabel: labelFinished,
			Time:       labelDone,
			Series:     labelGreatJob,
		}
	}

	text := TimerText{
		PhaseLabel:  state.Phase.String(),
		Time:        strconv.Itoa(state.Remaining),
		PauseButton: labelPause,
	}
	if state.Paused {
		text.PauseButton = labelResume
	}
	switch state.Phase {
	case workout.PhasePrep:
		text.Series = labelGetReady
	case workout.PhaseCooldown:
		text.Series = labelFinalStretch
	default:
		text.Series = fmt.Sprintf(labelSeriesFormat, state.Serie, state.Series)
	}
	return text
}

// FormatSetupValue renders one stepper value with its unit
func FormatSetupValue(info SetupFieldInfo, value int) string {
	if info.Unit == "" {
		return strconv.Itoa(value)
	}
	return fmt.Sprintf("%d%s", value, info.Unit)
}

// FormatDuration renders a number of seconds as m:ss
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// DescribeSetup summarizes a workout on one line
func DescribeSetup(config workout.Config) string {
	parts := make([]string, 0, len(AllSetupFields))
	for _, info := range AllSetupFields {
		parts = append(parts, fmt.Sprintf("%s %s", strings.ToLower(info.Label), FormatSetupValue(info, SetupValue(config, info.Field))))
	}
	return fmt.Sprintf("%s (total %s)", strings.Join(parts, ", "), FormatDuration(config.TotalSeconds()))
}

// SetupValue returns the value of one stepper
func SetupValue(config workout.Config, field SetupField) int {
	switch field {
	case FieldSeries:
		return config.Series
	case FieldWork:
		return config.WorkSeconds
	case FieldRest:
		return config.RestSeconds
	case FieldCooldown:
		return config.CooldownSeconds
	default:
		return 0
	}
}

// AdjustSetup returns config with field moved by delta, clamped to the
// field limits
func AdjustSetup(config workout.Config, field SetupField, delta int) workout.Config {
	info, ok := GetSetupFieldInfo(field)
	if !ok {
		return config
	}
	value := SetupValue(config, field) + delta
	if value < info.Min {
		value = info.Min
	}
	if value > info.Max {
		value = info.Max
	}
	switch field {
	case FieldSeries:
		config.Series = value
	case FieldWork:
		config.WorkSeconds = value
	case FieldRest:
		config.RestSeconds = value
	case FieldCooldown:
		config.CooldownSeconds = value
	}
	return config
}
