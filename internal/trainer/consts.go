package trainer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lowaak/interval-clock/internal/workout"
)

// UIMode represents the different screens of the application
type UIMode int

const (
	UIModeSetup UIMode = iota // Steppers for the workout configuration
	UIModeTimer               // Running countdown
)

// UIModeInfo contains metadata about a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	Hint        string
}

// AllUIModes is the list of all available UI modes
var AllUIModes = []UIModeInfo{
	{
		Mode:        UIModeSetup,
		DisplayName: "Setup",
		Hint:        "[yellow]↑/↓[white] Field  |  [yellow]←/→ -/+[white] Adjust  |  [yellow]Enter[white] Start  |  [yellow]M[white] Mute  |  [yellow]Esc[white] Quit",
	},
	{
		Mode:        UIModeTimer,
		DisplayName: "Timer",
		Hint:        "[yellow]Space[white] Pause/Resume  |  [yellow]S[white] Stop  |  [yellow]M[white] Mute  |  [yellow]Esc[white] Back to setup",
	},
}

// GetUIModeInfo returns the UIModeInfo for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// SetupField is one stepper on the setup screen
type SetupField int

const (
	FieldSeries SetupField = iota
	FieldWork
	FieldRest
	FieldCooldown
)

// SetupFieldInfo contains the label and limits of a setup stepper
type SetupFieldInfo struct {
	Field SetupField
	Label string
	Unit  string
	Step  int
	Min   int
	Max   int
}

// AllSetupFields lists the steppers in display order
var AllSetupFields = []SetupFieldInfo{
	{Field: FieldSeries, Label: "Series", Unit: "", Step: 1, Min: 1, Max: 99},
	{Field: FieldWork, Label: "Work", Unit: "s", Step: 5, Min: 0, Max: 3600},
	{Field: FieldRest, Label: "Rest", Unit: "s", Step: 5, Min: 0, Max: 3600},
	{Field: FieldCooldown, Label: "Cooldown", Unit: "s", Step: 5, Min: 0, Max: 3600},
}

// GetSetupFieldInfo returns the SetupFieldInfo for a given field
func GetSetupFieldInfo(field SetupField) (SetupFieldInfo, bool) {
	for _, info := range AllSetupFields {
		if info.Field == field {
			return info, true
		}
	}
	return SetupFieldInfo{}, false
}

// Default workout, used when nothing was remembered or configured
var DefaultSetup = workout.Config{
	Series:          5,
	WorkSeconds:     30,
	RestSeconds:     10,
	CooldownSeconds: 0,
}

// Timer screen texts
const (
	labelGetReady     = "Get Ready!"
	labelFinalStretch = "Final Stretch"
	labelSeriesFormat = "Series: %d / %d"
	labelFinished     = "FINISHED"
	labelDone         = "DONE"
	labelGreatJob     = "Great Job!"
	labelPause        = "PAUSE"
	labelResume       = "RESUME"
)

// phaseColors maps each phase to its screen color
var phaseColors = map[workout.Phase]tcell.Color{
	workout.PhasePrep:     tcell.NewHexColor(0x2979ff), // blue
	workout.PhaseWork:     tcell.NewHexColor(0x00e676), // green
	workout.PhaseRest:     tcell.NewHexColor(0xffb300), // amber
	workout.PhaseCooldown: tcell.NewHexColor(0xaa00ff), // purple
	workout.PhaseFinished: tcell.ColorWhite,
}

// PhaseColor returns the screen color of phase
func PhaseColor(phase workout.Phase) tcell.Color {
	if color, ok := phaseColors[phase]; ok {
		return color
	}
	return tcell.ColorWhite
}

const maxLogLines = 1000
