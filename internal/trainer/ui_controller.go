package trainer

import (
	"log"

	"github.com/lowaak/interval-clock/internal/workout"
)

// Muter silences an audio sink
type Muter interface {
	SetMuted(muted bool)
}

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model          *UIModel
	workoutManager *WorkoutManager
	logger         *log.Logger

	unregisterMuter func()
}

// NewUIController creates a new UIController. muter may be nil when sound
// is disabled.
func NewUIController(model *UIModel, workoutManager *WorkoutManager, muter Muter, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if workoutManager == nil {
		panic("UIController: workoutManager cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}
	c := &UIController{
		model:          model,
		workoutManager: workoutManager,
		logger:         logger,
	}
	if muter != nil {
		c.unregisterMuter = model.OnMuteChanged(muter.SetMuted)
	}
	return c
}

// --- Setup screen ---

// SelectNextField moves the stepper cursor down
func (c *UIController) SelectNextField() {
	c.model.SelectSetupField(1)
}

// SelectPreviousField moves the stepper cursor up
func (c *UIController) SelectPreviousField() {
	c.model.SelectSetupField(-1)
}

// IncreaseSelectedField is the + button of the selected stepper
func (c *UIController) IncreaseSelectedField() {
	c.model.AdjustSelectedField(1)
}

// DecreaseSelectedField is the - button of the selected stepper
func (c *UIController) DecreaseSelectedField() {
	c.model.AdjustSelectedField(-1)
}

// StartWorkout starts the workout shown on the setup screen and switches
// to the timer
func (c *UIController) StartWorkout() {
	config := c.model.GetSetup().Config
	if err := c.workoutManager.Start(config); err != nil {
		c.logger.Printf("UIController: %v", err)
		return
	}
	c.model.SetMode(UIModeTimer)
}

// --- Timer screen ---

// TogglePause is the PAUSE/RESUME button
func (c *UIController) TogglePause() {
	switch c.workoutManager.Status() {
	case workout.StatusRunning, workout.StatusPaused:
		c.workoutManager.TogglePause()
	default:
		c.logger.Printf("UIController: no workout running")
	}
}

// StopWorkout is the STOP button: abort the run and go back to setup
func (c *UIController) StopWorkout() {
	c.workoutManager.Stop()
	c.model.SetMode(UIModeSetup)
}

// ToggleMute silences or unsilences the beeps
func (c *UIController) ToggleMute() {
	muted := !c.model.IsMuted()
	c.model.SetMuted(muted)
	if muted {
		c.logger.Printf("UIController: sound off")
	} else {
		c.logger.Printf("UIController: sound on")
	}
}

// OnEscapeKey leaves the timer for the setup screen, or quits from setup
func (c *UIController) OnEscapeKey() {
	if c.model.GetUIState().Mode == UIModeTimer {
		c.StopWorkout()
		return
	}
	c.model.RequestCloseApplication()
}

// Shutdown stops the workout manager
func (c *UIController) Shutdown() {
	if c.unregisterMuter != nil {
		c.unregisterMuter()
	}
	c.workoutManager.Shutdown()
}
